package mock

import (
	"testing"

	"github.com/kozaktomas/marathon-booth/internal/database/dbtest"
)

func TestMockRunnerStore(t *testing.T) {
	dbtest.RunRunnerStore(t, NewMockRunnerStore())
}
