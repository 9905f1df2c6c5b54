package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("TEAMDECK_TEST_MODE") == "" {
			_ = os.Setenv("TEAMDECK_TEST_MODE", "1")
		}
	})
}
