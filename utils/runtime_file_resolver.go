package utils

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

var configExts = []string{".yaml", ".yml"}

// RuntimeFileResolver looks files up along a colon separated search path,
// followed by the working directory and the executable's directory.
type RuntimeFileResolver struct {
	DataDirs []string

	mu         sync.Mutex
	fileLookup map[string]string
}

func NewRuntimeFileResolver(searchPath string) *RuntimeFileResolver {
	resolver := &RuntimeFileResolver{
		fileLookup: make(map[string]string),
	}

	for _, dataDir := range strings.Split(searchPath, ":") {
		dataDir = strings.TrimSpace(dataDir)
		if len(dataDir) == 0 {
			continue
		}
		resolver.DataDirs = append(resolver.DataDirs, dataDir)
	}

	cwd, err := os.Getwd()
	if err == nil {
		resolver.DataDirs = append(resolver.DataDirs, cwd)
	} else {
		log.Printf("Failed to get CWD: %v", err)
	}

	resolver.DataDirs = append(resolver.DataDirs, filepath.Dir(os.Args[0]))
	return resolver
}

func (r *RuntimeFileResolver) Resolve(filePath string) (string, error) {
	if strings.HasPrefix(filePath, "/") {
		err := checkFile(filePath)
		return filePath, err
	}

	for _, dataDir := range r.DataDirs {
		p := path.Clean(path.Join(dataDir, filePath))
		if checkFile(p) == nil {
			return p, nil
		}
	}

	return filePath, fmt.Errorf("Failed to resolve %v", filePath)
}

func (r *RuntimeFileResolver) Lookup(filePath string) (string, error) {
	r.mu.Lock()
	p, found := r.fileLookup[filePath]
	r.mu.Unlock()
	if found {
		return p, nil
	}

	p, err := r.Resolve(filePath)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.fileLookup[filePath] = p
	r.mu.Unlock()
	return p, nil
}

// LookupConfig finds the configuration file of a scene, e.g. aqua.yaml
// for the scene named aqua.
func (r *RuntimeFileResolver) LookupConfig(fullName string) (string, error) {
	for _, ext := range configExts {
		if p, err := r.Lookup(fullName + ext); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no configuration file for %s in %v", fullName, r.DataDirs)
}

func (r *RuntimeFileResolver) Forget() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fileLookup = make(map[string]string)
}

func checkFile(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", filePath)
	}
	return nil
}
