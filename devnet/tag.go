package devnet

import (
	"github.com/TEENet-io/devchain/artifacts"
	logger "github.com/sirupsen/logrus"
)

// Tag names an address in the tracer so later log output can show it. It
// never fails: problems are logged at debug level and dropped.
func (rt *Runtime) Tag(address string, name string) {
	if rt == nil || rt.tags == nil {
		logger.WithFields(logger.Fields{
			"address": address,
			"name":    name,
		}).Debug("tracer disabled, name tag dropped")
		return
	}

	if err := rt.tags.SetNameTag(address, name); err != nil {
		logger.WithFields(logger.Fields{
			"address": address,
			"name":    name,
			"err":     err,
		}).Debug("failed to set name tag")
	}
}

// Artifact reads a compiled contract by bare or fully qualified name.
func (rt *Runtime) Artifact(name string) (*artifacts.Artifact, error) {
	if rt == nil || rt.store == nil {
		return nil, ErrNoRuntime
	}
	return rt.store.ReadArtifact(name)
}
