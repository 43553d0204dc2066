// Package artifacts reads compiled contract artifacts from a Hardhat build
// output directory.
package artifacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	lru "github.com/hashicorp/golang-lru/v2"
	logger "github.com/sirupsen/logrus"
)

const (
	DefaultDir = "artifacts"

	buildInfoDir    = "build-info"
	debugFileSuffix = ".dbg.json"
	artifactSuffix  = ".json"

	defaultCacheSize = 256
)

// Store resolves contract names to artifacts. Parsed artifacts are cached,
// so a Store assumes the build output does not change while it is in use.
type Store struct {
	dir   string
	cache *lru.Cache[string, *Artifact]
}

func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	cache, _ := lru.New[string, *Artifact](defaultCacheSize) // can only fail for non-positive size
	return &Store{
		dir:   dir,
		cache: cache,
	}
}

func (s *Store) Dir() string {
	return s.dir
}

// ReadArtifact returns the artifact for name, which is either a bare contract
// name ("Example") or a fully qualified name ("contracts/Example.sol:Example").
func (s *Store) ReadArtifact(name string) (*Artifact, error) {
	if a, ok := s.cache.Get(name); ok {
		return a, nil
	}

	file, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	a, err := readArtifactFile(file)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logger.Fields{
		"name": name,
		"file": file,
	}).Debug("artifact loaded")

	s.cache.Add(name, a)
	return a, nil
}

// FullyQualifiedNames lists every artifact in the build output, sorted.
func (s *Store) FullyQualifiedNames() ([]string, error) {
	var names []string
	err := s.walk(func(rel string) {
		names = append(names, fullyQualifiedName(rel))
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) resolve(name string) (string, error) {
	if source, contract, ok := strings.Cut(name, ":"); ok {
		file := filepath.Join(s.dir, filepath.FromSlash(source), contract+artifactSuffix)
		if _, err := os.Stat(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", errNotFound(name)
			}
			return "", err
		}
		return file, nil
	}

	var matches []string
	err := s.walk(func(rel string) {
		if path.Base(rel) == name+artifactSuffix {
			matches = append(matches, rel)
		}
	})
	if err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", errNotFound(name)
	case 1:
		return filepath.Join(s.dir, filepath.FromSlash(matches[0])), nil
	default:
		candidates := make([]string, len(matches))
		for i, rel := range matches {
			candidates[i] = fullyQualifiedName(rel)
		}
		sort.Strings(candidates)
		return "", errAmbiguous(name, candidates)
	}
}

// walk calls fn with the slash separated path, relative to the store
// directory, of every artifact file. A missing directory is an empty build.
func (s *Store) walk(fn func(rel string)) error {
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == buildInfoDir {
				return filepath.SkipDir
			}
			return nil
		}

		// artifacts live in a directory named after their source file
		if !strings.Contains(rel, "/") ||
			!strings.HasSuffix(rel, artifactSuffix) ||
			strings.HasSuffix(rel, debugFileSuffix) {
			return nil
		}

		fn(rel)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func fullyQualifiedName(rel string) string {
	return path.Dir(rel) + ":" + strings.TrimSuffix(path.Base(rel), artifactSuffix)
}

func readArtifactFile(file string) (*Artifact, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	a := new(Artifact)
	if err := json.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, file, err)
	}
	if a.ContractName == "" || a.SourceName == "" {
		return nil, fmt.Errorf("%w: %s: missing contract or source name", ErrInvalidArtifact, file)
	}

	if len(a.RawABI) > 0 {
		parsed, err := abi.JSON(bytes.NewReader(a.RawABI))
		if err != nil {
			return nil, fmt.Errorf("%w: %s abi: %v", ErrInvalidArtifact, file, err)
		}
		a.ABI = parsed
	}

	return a, nil
}
