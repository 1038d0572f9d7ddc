package notify_test

import (
	"sync"
	"testing"
	"time"

	"github.com/nikbrunner/bmc/internal/notify"
	"gotest.tools/v3/assert"
)

func TestCenter_PushAndExpire(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := notify.NewCenter(notify.Params{TTL: 4 * time.Second, Now: func() time.Time { return now }})

	c.Success("Bookmark added", "")
	now = now.Add(2 * time.Second)
	c.Error("Failed to delete bookmark", "Not Found")

	active := c.Active()
	assert.Equal(t, len(active), 2)
	assert.Equal(t, active[0].Title, "Bookmark added")
	assert.Equal(t, active[0].Level, notify.LevelSuccess)
	assert.Equal(t, active[1].Level, notify.LevelError)
	assert.Equal(t, active[1].Description, "Not Found")

	now = now.Add(2 * time.Second)
	active = c.Active()
	assert.Equal(t, len(active), 1)
	assert.Equal(t, active[0].Title, "Failed to delete bookmark")

	now = now.Add(2 * time.Second)
	assert.Equal(t, len(c.Active()), 0)
	assert.Equal(t, len(c.All()), 0)
}

func TestCenter_Dismiss(t *testing.T) {
	c := notify.NewCenter(notify.Params{})
	c.Success("one", "")
	c.Success("two", "")

	first := c.Active()[0]
	c.Dismiss(first.ID)

	active := c.Active()
	assert.Equal(t, len(active), 1)
	assert.Equal(t, active[0].Title, "two")

	c.Dismiss(999)
	assert.Equal(t, len(c.Active()), 1)
}

func TestCenter_DefaultTTL(t *testing.T) {
	c := notify.NewCenter(notify.Params{})
	assert.Equal(t, c.TTL(), 4*time.Second)
}

func TestCenter_ConcurrentPush(t *testing.T) {
	c := notify.NewCenter(notify.Params{TTL: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Error("Failed to add bookmark", "Internal Server Error")
		}()
	}
	wg.Wait()

	active := c.Active()
	assert.Equal(t, len(active), 50)

	seen := make(map[int]bool)
	for _, n := range active {
		assert.Assert(t, !seen[n.ID], "duplicate id %d", n.ID)
		seen[n.ID] = true
	}
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, notify.LevelSuccess.String(), "success")
	assert.Equal(t, notify.LevelError.String(), "error")
}
