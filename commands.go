package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/light-cache/light-cache/internal/cache"
	"github.com/light-cache/light-cache/internal/config"
	"github.com/light-cache/light-cache/internal/logging"
)

// usageArgs 将参数个数校验失败统一包装为 usageError。
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err: err}
		}
		return nil
	}
}

func newSetCmd(app *cliApp) *cobra.Command {
	var (
		ttl  string
		file string
	)
	cmd := &cobra.Command{
		Use:   "set KEY [VALUE]",
		Short: "写入记录；未给出 VALUE 时依次读取 --file 与标准输入",
		Args:  usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts cache.SetOptions
			if cmd.Flags().Changed("ttl") {
				var d config.Duration
				if err := d.UnmarshalText([]byte(ttl)); err != nil {
					return usageError{err: err}
				}
				opts = cache.ExpireIn(d.DurationValue())
			}

			content, err := readValue(cmd, args, file)
			if err != nil {
				return err
			}

			store, err := app.openStore()
			if err != nil {
				return err
			}
			path, err := store.Set(cmd.Context(), args[0], content, opts)
			if err != nil {
				return err
			}

			fields := logging.CacheFields(args[0], path)
			fields["size"] = humanize.Bytes(uint64(len(content)))
			app.entry("cache_set").WithFields(fields).Info("缓存写入完成")
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&ttl, "ttl", "", "过期时间（如 10m 或秒数）；省略时使用默认值，0 表示写入即过期")
	cmd.Flags().StringVar(&file, "file", "", "从文件读取正文")
	return cmd
}

// readValue 依次尝试位置参数、--file 与 stdin 作为正文来源。
func readValue(cmd *cobra.Command, args []string, file string) ([]byte, error) {
	if len(args) == 2 {
		return []byte(args[1]), nil
	}
	if file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("读取正文文件失败: %w", err)
		}
		return content, nil
	}
	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("读取标准输入失败: %w", err)
	}
	return content, nil
}

func newGetCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "输出有效记录的正文",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			content, ok, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			app.entry("cache_get").WithFields(logging.CacheFields(args[0], store.NameToPath(args[0]))).
				WithField("cache_hit", ok).Debug("缓存读取")
			if !ok {
				return fmt.Errorf("%w: %s", errCacheMiss, args[0])
			}
			_, err = cmd.OutOrStdout().Write(content)
			return err
		},
	}
}

func newInspectCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect KEY",
		Short: "显示有效记录的记录头信息",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			record, ok, err := store.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", errCacheMiss, args[0])
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "path:    %s\n", store.NameToPath(args[0]))
			fmt.Fprintf(w, "version: %d\n", record.Version)
			fmt.Fprintf(w, "size:    %s\n", humanize.Bytes(uint64(len(record.Content))))
			fmt.Fprintf(w, "ttl:     %s\n", record.Expiration)
			fmt.Fprintf(w, "created: %s (%s)\n", record.CreatedAt.Format(time.RFC3339), humanize.Time(record.CreatedAt))
			fmt.Fprintf(w, "expires: %s (%s)\n", record.ExpiresAt().Format(time.RFC3339), humanize.Time(record.ExpiresAt()))
			return nil
		},
	}
}

func newRemoveCmd(app *cliApp) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "remove KEY",
		Short: "删除记录；--force=false 时仅删除已失效的记录",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			removed, err := store.Remove(cmd.Context(), args[0], force)
			if err != nil {
				return err
			}
			app.entry("cache_remove").WithFields(logging.CacheFields(args[0], store.NameToPath(args[0]))).
				WithFields(logrus.Fields{"force": force, "removed": removed}).Info("缓存删除")
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(removed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", true, "忽略过期时间直接删除")
	return cmd
}

func newClearCmd(app *cliApp) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "清理缓存目录中的无效文件（--force 时删除全部文件）",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			count, err := store.Clear(cmd.Context(), force)
			if err != nil {
				return err
			}
			app.entry("cache_clear").WithFields(logrus.Fields{
				"dir":     store.Dir(),
				"force":   force,
				"removed": count,
			}).Info("缓存清理完成")
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "忽略过期时间删除目录内所有文件")
	return cmd
}

func newPathCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "path KEY",
		Short: "输出 KEY 对应的记录文件路径",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.NameToPath(args[0]))
			return nil
		},
	}
}

func newCheckConfigCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "仅校验配置后退出",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			fields := logging.BaseFields("check_config", app.configPath, app.runID)
			fields["dir"] = app.cfg.Global.Directory
			fields["default_expiration"] = app.cfg.Global.DefaultExpiration.DurationValue().String()
			fields["result"] = "ok"
			app.logger.WithFields(fields).Info("配置校验通过")
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  usageArgs(cobra.NoArgs),
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}
