package zookeeper

import (
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/pkg/errors"
)

// Conn is a thin wrapper over the zk connection so callers do not depend on
// the library directly.
type Conn struct {
	*zk.Conn
}

// Connect dials the ensemble. The session timeout bounds how long a crashed
// holder keeps its ephemeral lock nodes alive.
func Connect(servers []string) (*Conn, error) {
	conn, _, err := zk.Connect(servers, 10*time.Second)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to zookeeper")
	}
	return &Conn{Conn: conn}, nil
}
