package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/light-cache/light-cache/internal/cache"
	"github.com/light-cache/light-cache/internal/config"
	"github.com/light-cache/light-cache/internal/logging"
)

// configEnv 指定配置文件路径的环境变量，--config 优先级更高。
const configEnv = "LIGHT_CACHE_CONFIG"

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
	stdIn  io.Reader = os.Stdin
)

// errCacheMiss 表示 get/inspect 未找到有效记录，对应退出码 1。
var errCacheMiss = errors.New("缓存未命中")

// usageError 包装参数解析错误，对应退出码 2。
type usageError struct {
	err error
}

func (e usageError) Error() string { return "解析参数失败: " + e.err.Error() }

func (e usageError) Unwrap() error { return e.err }

// cliApp 汇总一次 CLI 调用期间共享的配置、日志与缓存实例。
type cliApp struct {
	configFlag string
	dirFlag    string

	configPath string
	runID      string
	cfg        *config.Config
	logger     *logrus.Logger
	store      *cache.Store
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// run 执行 CLI 并返回退出码，方便测试。
func run(ctx context.Context, args []string) int {
	app := &cliApp{}
	root := newRootCmd(app)
	root.SetArgs(args)
	root.SetIn(stdIn)
	root.SetOut(stdOut)
	root.SetErr(stdErr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintln(stdErr, err.Error())
	var usage usageError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}

func newRootCmd(app *cliApp) *cobra.Command {
	root := &cobra.Command{
		Use:           "lightcache",
		Short:         "基于文件的键值缓存，每条记录独立 TTL",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return app.setup()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	root.PersistentFlags().StringVar(&app.configFlag, "config", "", "配置文件路径（可被 "+configEnv+" 指定，flag 优先）")
	root.PersistentFlags().StringVar(&app.dirFlag, "dir", "", "覆盖配置中的缓存目录")

	root.AddCommand(
		newSetCmd(app),
		newGetCmd(app),
		newInspectCmd(app),
		newRemoveCmd(app),
		newClearCmd(app),
		newPathCmd(app),
		newCheckConfigCmd(app),
		newVersionCmd(),
	)
	return root
}

// resolveConfigPath 结合 flag 与环境变量计算配置路径；都为空时不读取配置文件。
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(configEnv)
}

// setup 按“配置 → 日志”顺序初始化，缓存目录延迟到真正需要时再创建。
func (a *cliApp) setup() error {
	a.configPath = resolveConfigPath(a.configFlag)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if err := cfg.ApplyDirectory(a.dirFlag); err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Global)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	a.logger = logger
	a.runID = uuid.NewString()
	return nil
}

// openStore 返回本次调用共享的 Store，首次调用时创建缓存目录。
func (a *cliApp) openStore() (*cache.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := cache.NewStore(cache.Options{
		Directory:         a.cfg.Global.Directory,
		DefaultExpiration: a.cfg.Global.DefaultExpiration.DurationValue(),
		Logger:            a.logger.WithField("run_id", a.runID),
	})
	if err != nil {
		return nil, fmt.Errorf("初始化缓存目录失败: %w", err)
	}
	a.store = store
	return store, nil
}

// entry 返回带有基础字段的日志条目。
func (a *cliApp) entry(action string) *logrus.Entry {
	return a.logger.WithFields(logging.BaseFields(action, a.configPath, a.runID))
}
