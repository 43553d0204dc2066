package artifacts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/TEENet-io/devchain/common"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// LinkReference locates a library placeholder inside the bytecode.
type LinkReference struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// LinkReferences maps source name -> library name -> placeholder positions.
type LinkReferences map[string]map[string][]LinkReference

// Artifact is the compiler output for one contract as written by the Hardhat
// build into <artifacts>/<sourceName>/<contractName>.json.
type Artifact struct {
	Format                 string          `json:"_format"`
	ContractName           string          `json:"contractName"`
	SourceName             string          `json:"sourceName"`
	RawABI                 json.RawMessage `json:"abi"`
	Bytecode               string          `json:"bytecode"`
	DeployedBytecode       string          `json:"deployedBytecode"`
	LinkReferences         LinkReferences  `json:"linkReferences"`
	DeployedLinkReferences LinkReferences  `json:"deployedLinkReferences"`

	// ABI is parsed from RawABI when the artifact is read.
	ABI abi.ABI `json:"-"`
}

func (a *Artifact) FullyQualifiedName() string {
	return a.SourceName + ":" + a.ContractName
}

// Code returns the creation bytecode.
func (a *Artifact) Code() ([]byte, error) {
	return decodeBytecode(a.FullyQualifiedName(), a.Bytecode, a.LinkReferences)
}

// RuntimeCode returns the deployed bytecode.
func (a *Artifact) RuntimeCode() ([]byte, error) {
	return decodeBytecode(a.FullyQualifiedName(), a.DeployedBytecode, a.DeployedLinkReferences)
}

// IsAbstract reports whether the artifact has no creation code, which is the
// case for interfaces and abstract contracts.
func (a *Artifact) IsAbstract() bool {
	return common.Trim0xPrefix(a.Bytecode) == ""
}

func decodeBytecode(name, code string, refs LinkReferences) ([]byte, error) {
	if len(refs) > 0 || strings.Contains(code, "__") {
		libs := make([]string, 0)
		for source, names := range refs {
			for lib := range names {
				libs = append(libs, source+":"+lib)
			}
		}
		return nil, fmt.Errorf("%w: %s %v", ErrUnlinkedBytecode, name, libs)
	}

	b, err := hexutil.Decode(common.Prepend0xPrefix(code))
	if err != nil {
		return nil, fmt.Errorf("%w: %s bytecode: %v", ErrInvalidArtifact, name, err)
	}
	return b, nil
}
