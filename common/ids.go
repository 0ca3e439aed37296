package common

import (
	"fmt"

	"github.com/sony/sonyflake"
)

// NextId returns the next id from the given sonyflake worker, formatted as a
// decimal string. Used for pipeline run correlation in logs.
func NextId(idWorker *sonyflake.Sonyflake) string {
	id, err := idWorker.NextID()
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%d", id)
}
