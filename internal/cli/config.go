package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/voltlab/gridclosure/pkg/closure"
	"github.com/voltlab/gridclosure/pkg/source/csvsource"
	"github.com/voltlab/gridclosure/pkg/store/mongodb"
)

// defaultConfigFile is looked up in the working directory when --config is
// not given. A missing default file is not an error.
const defaultConfigFile = appName + ".toml"

// Store backends selectable via config or --store.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongoDB  = "mongodb"
)

// Config is the TOML configuration file schema. Command-line flags
// override any value set here.
type Config struct {
	DataDir      string `toml:"data_dir"`
	NodesFile    string `toml:"nodes_file"`
	SegmentsFile string `toml:"segments_file"`
	RootMarker   string `toml:"root_marker"`

	Store StoreConfig `toml:"store"`
	Serve ServeConfig `toml:"serve"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend       string `toml:"backend"`
	PostgresDSN   string `toml:"postgres_dsn"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// ServeConfig configures the HTTP query server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

func defaultConfig() Config {
	return Config{
		DataDir:      "data",
		NodesFile:    csvsource.DefaultNodesFile,
		SegmentsFile: csvsource.DefaultSegmentsFile,
		RootMarker:   closure.DefaultRootMarker,
		Store: StoreConfig{
			Backend:       BackendPostgres,
			PostgresDSN:   "postgres://localhost:5432/gridclosure",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: mongodb.DefaultDatabase,
		},
		Serve: ServeConfig{Addr: ":8080"},
	}
}

// loadConfig reads path (or the default file when path is empty) on top of
// the built-in defaults. A missing explicit path is an error; a missing
// default file is not.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}
