// Package testutils holds helpers shared by package tests.
package testutils

import (
	"github.com/bradleyjkemp/cupaloy"
)

// Snapshotter compares serialized documents against snapshots stored under a
// package subdirectory.
type Snapshotter struct {
	config *cupaloy.Config
}

func NewSnapshotter(subdirectory string) *Snapshotter {
	return &Snapshotter{
		config: cupaloy.New(cupaloy.SnapshotSubdirectory(subdirectory)),
	}
}

// SnapshotXML snapshots a document as text so snapshot diffs stay readable.
func (s Snapshotter) SnapshotXML(t cupaloy.TestingT, doc []byte) {
	s.config.SnapshotT(t, string(doc))
}
