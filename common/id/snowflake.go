package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

// Node IDs per process type. Server and worker must never share one.
const (
	NodeServer int64 = 1
	NodeWorker int64 = 2
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// Only the first call has an effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a time-ordered int64 ID for a new row.
// Falls back to node 0 when Init was never called (tests, one-off tools).
func New() int64 {
	if node == nil {
		_ = Init(0)
	}
	return node.Generate().Int64()
}
