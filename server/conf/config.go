package conf

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"

	"github.com/zhukovaskychina/xmemsim/logger"
	"github.com/zhukovaskychina/xmemsim/server/memory"
)

// ErrInvalidConfig 配置缺失、格式错误或取值为0
var ErrInvalidConfig = stderrors.New("invalid configuration")

var ConfigPath string

type CommandLineArgs struct {
	ConfigPath string
}

/*
*
[memory]
ram_size  = 1024
swap_size = 2048
page_size = 64

[simulator]
policy        = fifo
mode          = auto
tick          = 500ms
max_processes = 30
seed          = 0
*/
type Cfg struct {
	Raw  *ini.File
	Path string

	// memory
	RAMSize  int `default:"1024" yaml:"ram_size" json:"ram_size,omitempty"`
	SwapSize int `default:"0" yaml:"swap_size" json:"swap_size,omitempty"`
	PageSize int `default:"64" yaml:"page_size" json:"page_size,omitempty"`

	// simulator
	Policy       memory.ReplacementPolicy
	AutoMode     bool   `default:"true" yaml:"mode" json:"mode,omitempty"`
	Tick         string `default:"500ms" yaml:"tick" json:"tick,omitempty"`
	TickDuration time.Duration
	MaxProcesses int   `default:"30" yaml:"max_processes" json:"max_processes,omitempty"`
	Seed         int64 `default:"0" yaml:"seed" json:"seed,omitempty"`

	// logs
	LogError string `default:"logs/error.log" yaml:"log_error" json:"log_error,omitempty"`
	LogInfos string `default:"logs/xmemsim.log" yaml:"log_infos" json:"log_infos,omitempty"`
	LogLevel string `default:"info" yaml:"log_level" json:"log_level,omitempty"`

	// dump
	DumpDir string `default:"dump" yaml:"dump_dir" json:"dump_dir,omitempty"`
}

func NewCfg() *Cfg {
	return &Cfg{
		Raw:          ini.Empty(),
		RAMSize:      1024,
		PageSize:     64,
		Policy:       memory.PolicyFIFO,
		AutoMode:     true,
		Tick:         "500ms",
		TickDuration: 500 * time.Millisecond,
		MaxProcesses: 30,
		LogError:     "logs/error.log",
		LogInfos:     "logs/xmemsim.log",
		LogLevel:     "info",
		DumpDir:      "dump",
	}
}

// Load 读取配置文件并校验，文件不存在或内存参数非法时返回错误
func (cfg *Cfg) Load(args *CommandLineArgs) (*Cfg, error) {
	setHomePath(args)
	configFile := "conf/xmemsim.ini"
	if args != nil && args.ConfigPath != "" {
		configFile = args.ConfigPath
	}
	cfg.Path = configFile

	var (
		src source
		err error
	)
	if strings.EqualFold(filepath.Ext(configFile), ".toml") {
		src, err = loadTomlSource(configFile)
	} else {
		src, err = cfg.loadIniSource(configFile)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "config file %s unreadable: %v", configFile, err)
	}

	if err := cfg.parse(src); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debugf("成功加载配置文件: %s\n", configFile)
	return cfg, nil
}

func setHomePath(args *CommandLineArgs) {
	if args != nil && args.ConfigPath != "" {
		ConfigPath = args.ConfigPath
		return
	}
	ConfigPath, _ = filepath.Abs(".")
}

// Validate 校验内存参数，RAM和页大小必须为正，swap可以为0
func (cfg *Cfg) Validate() error {
	if cfg.RAMSize <= 0 || cfg.PageSize <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "ram_size=%d page_size=%d must be positive", cfg.RAMSize, cfg.PageSize)
	}
	if cfg.SwapSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "swap_size=%d is negative", cfg.SwapSize)
	}
	if cfg.MaxProcesses <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "max_processes=%d must be positive", cfg.MaxProcesses)
	}
	if cfg.TickDuration <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "tick=%s must be positive", cfg.Tick)
	}
	return nil
}

// FrameCount 物理帧数量
func (cfg *Cfg) FrameCount() int {
	if cfg.PageSize <= 0 {
		return 0
	}
	return cfg.RAMSize / cfg.PageSize
}

func (cfg *Cfg) parse(src source) error {
	var err error
	if cfg.RAMSize, err = intValue(src, 0, "memory.ram_size", "RAM_SIZE"); err != nil {
		return err
	}
	if cfg.SwapSize, err = intValue(src, 0, "memory.swap_size", "SWAP_SIZE"); err != nil {
		return err
	}
	if cfg.PageSize, err = intValue(src, 0, "memory.page_size", "PAGE_SIZE"); err != nil {
		return err
	}

	if v, ok := src.value("simulator.policy"); ok {
		if cfg.Policy, err = memory.ParsePolicy(v); err != nil {
			return errors.Wrapf(ErrInvalidConfig, "policy: %v", err)
		}
	}
	if v, ok := src.value("simulator.mode"); ok {
		switch strings.ToLower(v) {
		case "auto", "automatic":
			cfg.AutoMode = true
		case "manual":
			cfg.AutoMode = false
		default:
			return errors.Wrapf(ErrInvalidConfig, "mode %q", v)
		}
	}
	if v, ok := src.value("simulator.tick"); ok {
		cfg.Tick = v
	}
	if cfg.TickDuration, err = time.ParseDuration(cfg.Tick); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "time.ParseDuration(Tick{%#v}) = error{%v}", cfg.Tick, err)
	}
	if cfg.MaxProcesses, err = intValue(src, cfg.MaxProcesses, "simulator.max_processes"); err != nil {
		return err
	}
	seed, err := intValue(src, 0, "simulator.seed")
	if err != nil {
		return err
	}
	cfg.Seed = int64(seed)

	cfg.LogError = stringValue(src, cfg.LogError, "logs.log_error")
	cfg.LogInfos = stringValue(src, cfg.LogInfos, "logs.log_infos")
	cfg.LogLevel = stringValue(src, cfg.LogLevel, "logs.log_level")
	cfg.DumpDir = stringValue(src, cfg.DumpDir, "dump.dir")
	return nil
}

// source 按"section.key"读取配置值，无section的键位于默认段
type source interface {
	value(key string) (string, bool)
}

func intValue(src source, def int, keys ...string) (int, error) {
	for _, key := range keys {
		v, ok := src.value(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidConfig, "%s=%q is not an integer", key, v)
		}
		return n, nil
	}
	return def, nil
}

func stringValue(src source, def string, keys ...string) string {
	for _, key := range keys {
		if v, ok := src.value(key); ok && v != "" {
			return v
		}
	}
	return def
}

type iniSource struct {
	file *ini.File
}

func (cfg *Cfg) loadIniSource(path string) (source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	parsedFile, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.Raw = parsedFile
	return iniSource{file: parsedFile}, nil
}

func (s iniSource) value(key string) (string, bool) {
	sectionName, keyName := ini.DefaultSection, key
	if i := strings.Index(key, "."); i >= 0 {
		sectionName, keyName = key[:i], key[i+1:]
	}
	section, err := s.file.GetSection(sectionName)
	if err != nil || !section.HasKey(keyName) {
		return "", false
	}
	return strings.TrimSpace(section.Key(keyName).String()), true
}

type tomlSource struct {
	tree *toml.Tree
}

func loadTomlSource(path string) (source, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return tomlSource{tree: tree}, nil
}

func (s tomlSource) value(key string) (string, bool) {
	if !s.tree.Has(key) {
		return "", false
	}
	switch v := s.tree.Get(key).(type) {
	case string:
		return v, true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	case nil:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}

// GetString 获取配置项的字符串值，key形如"section.key"
func (cfg *Cfg) GetString(key string) string {
	v, _ := iniSource{file: cfg.Raw}.value(key)
	return v
}
