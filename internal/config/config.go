package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/reprompt/internal/selector"
)

const (
	// ErrCodeNotFound 表示显式指定的 --config 文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeSelectorsInvalid 表示选择器覆盖文件无法读取或内容不合法。
	ErrCodeSelectorsInvalid = "selectors_invalid"
)

const (
	// FileName 是工作目录下默认读取的配置文件名（可选）。
	FileName = "reprompt.yaml"

	DefaultMaxWaitMS      = 5000
	DefaultPollIntervalMS = 100
	DefaultInjectDelayMS  = 500
	DefaultResource       = "content.js"
	DefaultLogLevel       = "info"
)

// 环境变量覆盖（优先级介于 CLI 与配置文件之间）。
const (
	EnvMaxWaitMS     = "REPROMPT_MAX_WAIT_MS"
	EnvProxyURL      = "REPROMPT_PROXY_URL"
	EnvLogLevel      = "REPROMPT_LOG_LEVEL"
	EnvSelectorsFile = "REPROMPT_SELECTORS_FILE"
)

// CLIArgs 保留“是否显式指定”的信息，保证 --max-wait=0 这类值也能覆盖配置。
type CLIArgs struct {
	ConfigPath string

	MaxWaitMS  int
	MaxWaitSet bool

	LogLevel    string
	LogLevelSet bool

	ProxyURL string
	ProxySet bool
}

// FileConfig 对应 reprompt.yaml 的解析结构。指针字段用于区分“未填写”与零值。
type FileConfig struct {
	Wait struct {
		MaxMS          *int `yaml:"max_ms"`
		PollIntervalMS *int `yaml:"poll_interval_ms"`
	} `yaml:"wait"`
	Inject struct {
		DelayMS  *int   `yaml:"delay_ms"`
		Resource string `yaml:"resource"`
	} `yaml:"inject"`
	SelectorsFile string       `yaml:"selectors_file"`
	Proxy         *ProxyConfig `yaml:"proxy"`
	LogLevel      string       `yaml:"log_level"`
}

type ProxyConfig struct {
	URL string `yaml:"url"`
}

// EffectiveConfig 是合并并规范化后的最终配置。
type EffectiveConfig struct {
	MaxWait        time.Duration
	PollInterval   time.Duration
	InjectDelay    time.Duration
	InjectResource string

	// SelectorsFile 为空表示只用内置目录；非空时是 clean + absolute 路径。
	SelectorsFile string
	ProxyURL      string
	LogLevel      string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Code == ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case e.Err != nil && e.Path != "":
		return fmt.Sprintf("%s：%q 无效：%v", e.Code, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s：%v", e.Code, e.Err)
	default:
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，再与环境变量、CLI 合并。
//
// 发现规则：
// 1) CLI 提供 ConfigPath：必须存在
// 2) 否则尝试 <cwd>/reprompt.yaml（可选）
//
// 覆盖优先级：CLI（显式指定）> 环境变量 > 配置文件 > 默认值。
// getenv 为 nil 时不读环境变量。
func LoadEffective(cwd string, cli CLIArgs, getenv func(string) string) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	required := false
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		required = true
	}

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if required && !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	return merge(cwdAbs, cli, getenv, fc, cfgPath)
}

func merge(cwdAbs string, cli CLIArgs, getenv func(string) string, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	invalid := func(err error) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	maxWait := DefaultMaxWaitMS
	if fc.Wait.MaxMS != nil {
		maxWait = *fc.Wait.MaxMS
	}
	if v := strings.TrimSpace(getenv(EnvMaxWaitMS)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return invalid(fmt.Errorf("%s 必须是整数：%q", EnvMaxWaitMS, v))
		}
		maxWait = n
	}
	if cli.MaxWaitSet {
		maxWait = cli.MaxWaitMS
	}
	maxWait = clamp(maxWait, 0, 60000)

	poll := DefaultPollIntervalMS
	if fc.Wait.PollIntervalMS != nil {
		poll = *fc.Wait.PollIntervalMS
	}
	poll = clamp(poll, 10, 1000)

	delay := DefaultInjectDelayMS
	if fc.Inject.DelayMS != nil {
		delay = *fc.Inject.DelayMS
	}
	delay = clamp(delay, 1, 10000)

	resource := strings.TrimSpace(fc.Inject.Resource)
	if resource == "" {
		resource = DefaultResource
	}

	// 配置文件中的相对路径以配置文件所在目录为基准；环境变量中的以 cwd 为基准。
	selectors := ""
	if s := strings.TrimSpace(fc.SelectorsFile); s != "" {
		selectors = absCleanFrom(filepath.Dir(cfgPath), s)
	}
	if s := strings.TrimSpace(getenv(EnvSelectorsFile)); s != "" {
		selectors = absCleanFrom(cwdAbs, s)
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if v := strings.TrimSpace(getenv(EnvProxyURL)); v != "" {
		proxyURL = v
	}
	if cli.ProxySet {
		proxyURL = strings.TrimSpace(cli.ProxyURL)
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return invalid(fmt.Errorf("proxy.url 无效：%w", err))
		}
		if u.Scheme == "" || u.Host == "" {
			return invalid(fmt.Errorf("proxy.url 缺少 scheme 或 host：%q", proxyURL))
		}
	}

	level := DefaultLogLevel
	if v := strings.TrimSpace(fc.LogLevel); v != "" {
		level = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		level = v
	}
	if cli.LogLevelSet {
		level = strings.TrimSpace(cli.LogLevel)
	}
	level = strings.ToLower(level)
	if err := validateLogLevel(level); err != nil {
		return invalid(err)
	}

	return EffectiveConfig{
		MaxWait:        time.Duration(maxWait) * time.Millisecond,
		PollInterval:   time.Duration(poll) * time.Millisecond,
		InjectDelay:    time.Duration(delay) * time.Millisecond,
		InjectResource: resource,
		SelectorsFile:  selectors,
		ProxyURL:       proxyURL,
		LogLevel:       level,
	}, nil
}

// LoadCatalog 返回内置目录；配置了覆盖文件时合并覆盖。
func LoadCatalog(eff EffectiveConfig) (selector.Catalog, error) {
	base := selector.Default()
	if eff.SelectorsFile == "" {
		return base, nil
	}
	c, err := selector.LoadFile(eff.SelectorsFile, base)
	if err != nil {
		return selector.Catalog{}, &Error{Code: ErrCodeSelectorsInvalid, Path: eff.SelectorsFile, Err: err}
	}
	return c, nil
}

func validateLogLevel(l string) error {
	switch l {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("log_level 只能是 debug|info|warn|error，实际是 %q", l)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 YAML 配置文件。不存在不算错误（exists=false）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
