package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/roboco-io/mwaw2md/internal/dispatch"
	"github.com/roboco-io/mwaw2md/internal/ir"
	"github.com/spf13/cobra"
)

var entriesNotes bool

var entriesCmd = &cobra.Command{
	Use:   "entries <file>",
	Short: "엔트리 인덱스와 디코딩 결과 표시",
	Long: `문서의 엔트리 인덱스를 디코딩 결과와 함께 표시합니다.

어떤 디코더도 사용하지 않은 엔트리는 마지막에 따로 나열합니다.
디코딩이 실패해도 그때까지의 인덱스를 출력합니다.

예시:
  mwaw2md entries memo.wri
  mwaw2md entries letter.wps --notes`,
	Args: cobra.ExactArgs(1),
	RunE: runEntries,
}

func init() {
	entriesCmd.Flags().BoolVar(&entriesNotes, "notes", false, "진단 메시지 표시")
	addDecodeFlags(entriesCmd)

	rootCmd.AddCommand(entriesCmd)
}

func runEntries(cmd *cobra.Command, args []string) error {
	_, rep, err := decodeTo(cmd, args[0], ir.NewBuilder(), parserOptions(cmd))
	if rep != nil {
		writeReport(cmd.OutOrStdout(), rep, entriesNotes || err != nil)
	}
	if err != nil {
		return fmt.Errorf("문서 파싱 실패: %w", err)
	}
	return nil
}

func writeReport(out io.Writer, rep *dispatch.Report, notes bool) {
	fmt.Fprintf(out, "형식: %s\n상태: %s\n\n", rep.Format, rep.State)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "이름\tID\t시작\t길이\t결과")
	fmt.Fprintln(w, "----\t--\t----\t----\t----")
	for _, e := range rep.Entries {
		fmt.Fprintf(w, "%q\t%d\t%d\t%d\t%s\n", e.Name, e.ID, e.Begin, e.Length, e.Result)
	}
	w.Flush()

	if len(rep.Unparsed) > 0 {
		fmt.Fprintf(out, "\n사용되지 않은 엔트리 (%d):\n", len(rep.Unparsed))
		for _, name := range rep.Unparsed {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}

	if notes && len(rep.Notes) > 0 {
		fmt.Fprintf(out, "\n진단 (%d):\n", len(rep.Notes))
		for _, n := range rep.Notes {
			fmt.Fprintf(out, "  %s\n", n)
		}
	}
}
