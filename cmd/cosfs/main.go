package main

import (
	"fmt"
	"os"

	logging "github.com/ipfs/go-log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cosfs 错误: %v\n", err)
		os.Exit(1)
	}
}

// app 子命令共享的状态
type app struct {
	configPath string
	logLevel   string
	debug      bool
	noProgress bool

	cfg *config
	fs  storage
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "cosfs",
		Short:         "腾讯云 COS v4 文件管理工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML 配置文件路径")
	flags.StringVar(&a.logLevel, "log-level", "", "日志级别：debug / info / warn / error")
	flags.BoolVar(&a.debug, "debug", false, "接口错误以错误返回，不再只返回失败")
	flags.BoolVar(&a.noProgress, "no-progress", false, "禁用进度条显示")

	cmd.AddCommand(
		newPutCmd(a),
		newGetCmd(a),
		newLsCmd(a),
		newStatCmd(a),
		newRmCmd(a),
		newRmdirCmd(a),
		newMkdirCmd(a),
		newMvCmd(a),
		newCpCmd(a),
		newVisibilityCmd(a),
		newURLCmd(a),
		newFetchCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = a.debug
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err = logging.SetLogLevelRegex("cosfs/.*", cfg.LogLevel); err != nil {
		return fmt.Errorf("日志级别 %q 无效: %w", cfg.LogLevel, err)
	}

	if a.fs, err = cfg.newStorage(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}
