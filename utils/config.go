package utils

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	strftime "github.com/ncruces/go-strftime"
	"gopkg.in/yaml.v2"
)

var EtcDir = "."

// Options holds the key/value pairs of one configuration section, for
// example the "modis-level3" section of a scene file.
type Options map[string]string

// directives understood by the path renderer
const strftimeDirectives = "aAbBcCdDeFgGhHIjklmMnpPrRStTuUVwWxXyYzZ%"

// PathTemplate joins the dir and filename options.
func (o Options) PathTemplate() (string, error) {
	dir, ok := o["dir"]
	if !ok {
		return "", fmt.Errorf("option 'dir' is not configured")
	}
	filename, ok := o["filename"]
	if !ok || len(filename) == 0 {
		return "", fmt.Errorf("option 'filename' is not configured")
	}
	return filepath.Join(dir, filename), nil
}

// Path renders the dir/filename template against a time slot.
func (o Options) Path(timeSlot time.Time) (string, error) {
	tpl, err := o.PathTemplate()
	if err != nil {
		return "", err
	}
	if err := ValidatePathTemplate(tpl); err != nil {
		return "", err
	}
	return strftime.Format(tpl, timeSlot), nil
}

func ValidatePathTemplate(tpl string) error {
	for i := 0; i < len(tpl); i++ {
		if tpl[i] != '%' {
			continue
		}
		i++
		if i >= len(tpl) {
			return fmt.Errorf("path template %q ends with a bare %%", tpl)
		}
		if !strings.ContainsRune(strftimeDirectives, rune(tpl[i])) {
			return fmt.Errorf("unsupported directive %%%c in path template %q", tpl[i], tpl)
		}
	}
	return nil
}

// DerivedProduct is a band-math expression over loaded channels.
type DerivedProduct struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
}

// SceneConfig is the content of one <satellite><number>.yaml file. Every
// top-level mapping other than "derived" is a section of options, keyed
// like "modis-level3".
type SceneConfig struct {
	Name     string             `yaml:"-"`
	Derived  []DerivedProduct   `yaml:"derived"`
	Sections map[string]Options `yaml:",inline"`
}

// LoadConfigFile parses a scene configuration document.
func (config *SceneConfig) LoadConfigFile(configFile string) error {
	*config = SceneConfig{}
	cfg, err := ioutil.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("Error while reading config file: %s. Error: %v", configFile, err)
	}

	err = yaml.Unmarshal(cfg, config)
	if err != nil {
		return fmt.Errorf("Error at YAML parsing config document: %s. Error: %v", configFile, err)
	}

	base := filepath.Base(configFile)
	config.Name = strings.TrimSuffix(base, filepath.Ext(base))

	for i, d := range config.Derived {
		if len(d.Name) == 0 || len(strings.TrimSpace(d.Expression)) == 0 {
			return fmt.Errorf("derived product %d in %s needs a name and an expression", i, configFile)
		}
	}
	return nil
}

func (config *SceneConfig) Section(name string) (Options, error) {
	opts, ok := config.Sections[name]
	if !ok {
		return nil, fmt.Errorf("section %s not found in %s config", name, config.Name)
	}
	return opts, nil
}

// LoadAllConfigFiles loads every scene file below rootDir keyed by scene
// name.
func LoadAllConfigFiles(rootDir string) (map[string]*SceneConfig, error) {
	configMap := make(map[string]*SceneConfig)
	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		ext := filepath.Ext(info.Name())
		if info.IsDir() || (ext != ".yaml" && ext != ".yml") {
			return nil
		}

		log.Printf("Loading config file: %s\n", path)
		config := &SceneConfig{}
		if e := config.LoadConfigFile(path); e != nil {
			return e
		}
		configMap[config.Name] = config
		return nil
	})

	if err == nil && len(configMap) == 0 {
		err = fmt.Errorf("No config file found")
	}

	return configMap, err
}

// ConfigStore finds scene files on a search path and keeps the parsed
// documents until Reset.
type ConfigStore struct {
	resolver *RuntimeFileResolver

	mu      sync.RWMutex
	configs map[string]*SceneConfig
}

func NewConfigStore(searchPath string) *ConfigStore {
	return &ConfigStore{
		resolver: NewRuntimeFileResolver(searchPath),
		configs:  make(map[string]*SceneConfig),
	}
}

// Put registers an already parsed configuration.
func (s *ConfigStore) Put(config *SceneConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[config.Name] = config
}

func (s *ConfigStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs = make(map[string]*SceneConfig)
	s.resolver.Forget()
}

func (s *ConfigStore) Load(fullName string) (*SceneConfig, error) {
	s.mu.RLock()
	config, ok := s.configs[fullName]
	s.mu.RUnlock()
	if ok {
		return config, nil
	}

	path, err := s.resolver.LookupConfig(fullName)
	if err != nil {
		return nil, err
	}

	config = &SceneConfig{}
	if err := config.LoadConfigFile(path); err != nil {
		return nil, err
	}
	config.Name = fullName

	s.Put(config)
	return config, nil
}

func (s *ConfigStore) Options(fullName, section string) (Options, error) {
	config, err := s.Load(fullName)
	if err != nil {
		return nil, err
	}
	return config.Section(section)
}

func (s *ConfigStore) DerivedProducts(fullName string) ([]DerivedProduct, error) {
	config, err := s.Load(fullName)
	if err != nil {
		return nil, err
	}
	return config.Derived, nil
}

// WatchConfig drops the parsed configuration on SIGHUP so the next load
// reads the files again.
func WatchConfig(infoLog *log.Logger, store *ConfigStore) {
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			infoLog.Println("Caught SIGHUP, reloading config...")
			store.Reset()
		}
	}()
}
