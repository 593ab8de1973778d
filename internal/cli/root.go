// Package cli implements the mwaw2md command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roboco-io/mwaw2md/internal/config"
	"github.com/roboco-io/mwaw2md/internal/dispatch"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	logLevel   string

	cfg    = config.DefaultConfig()
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var rootCmd = &cobra.Command{
	Use:   "mwaw2md [file]",
	Short: "고전 워드프로세서 문서를 Markdown으로 변환",
	Long: `Microsoft Write, Works, Mac TextEdit/SimpleText 문서를 Markdown으로 변환합니다.

파일 형식은 내용(매직 바이트, Finder 타입)으로 감지합니다.
Mac 문서의 리소스 포크는 <파일>/..namedfork/rsrc, AppleDouble(._<파일>),
<파일>.rsrc 순서로 찾습니다.

예시:
  mwaw2md memo.wri
  mwaw2md convert letter.wps -o letter.md
  mwaw2md entries "Read Me"`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runConvert(cmd, args)
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "버전 정보 표시",
	Run: func(cmd *cobra.Command, args []string) {
		names := make([]string, 0, len(dispatch.Formats()))
		for _, f := range dispatch.Formats() {
			names = append(names, f.String())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "mwaw2md %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "지원 형식: %s\n", strings.Join(names, ", "))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "설정 파일 경로 (기본: ~/.mwaw2md/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "로그 레벨 (debug, info, warn, error)")
	addDecodeFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newLoader() (*config.Loader, error) {
	if configPath != "" {
		return config.NewLoaderWithPath(configPath), nil
	}
	return config.NewLoader()
}

// setup loads the configuration and builds the logger before any
// command runs.
func setup(cmd *cobra.Command, args []string) error {
	loader, err := newLoader()
	if err != nil {
		return fmt.Errorf("설정 로더 초기화 실패: %w", err)
	}
	c, err := loader.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}
	c.ApplyEnv()
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("설정 오류: %w", err)
	}
	cfg = c
	logger = newLogger(cmd.ErrOrStderr(), c.Log)
	return nil
}

func newLogger(w io.Writer, lc config.LogConfig) *slog.Logger {
	level, _ := lc.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
