package artifacts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrArtifactNotFound  = errors.New("artifact not found")
	ErrAmbiguousArtifact = errors.New("ambiguous artifact name")
	ErrInvalidArtifact   = errors.New("invalid artifact")
	ErrUnlinkedBytecode  = errors.New("bytecode has unlinked library references")
)

func errNotFound(name string) error {
	return fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
}

func errAmbiguous(name string, candidates []string) error {
	return fmt.Errorf("%w: %s matches %s, use a fully qualified name", ErrAmbiguousArtifact, name, strings.Join(candidates, ", "))
}
