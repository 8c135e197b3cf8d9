package report

import (
	"fmt"
	"io"

	"github.com/ritogk/roadscan/internal/models"
)

const unknown = "不明"

// RenderSummary writes the fixed-column console table with one row per
// successful coordinate, the aggregate token-usage block when results exist,
// and the failure list when failures exist.
func RenderSummary(w io.Writer, report *models.AnalysisReport) {
	fmt.Fprintln(w, "========== 分析結果サマリー ==========")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| 座標 | 住所 | 車線数 | 車線幅 | センターライン | 路肩(左/右) | ガードレール(左/右) | トークン | 処理時間 |")
	fmt.Fprintln(w, "|------|------|--------|--------|----------------|-------------|---------------------|----------|----------|")

	for _, result := range report.Results {
		m := result.Measurement
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s/%s | %s/%s | %d | %dms |\n",
			result.Coordinate.String(),
			orDash(result.Address),
			formatInt(m.Lanes),
			formatMeters(m.LaneWidth),
			formatBool(m.CenterLine),
			formatMeters(m.ShoulderLeft), formatMeters(m.ShoulderRight),
			formatBool(m.GuardrailLeft), formatBool(m.GuardrailRight),
			result.TokenUsage.InputTokens+result.TokenUsage.OutputTokens,
			result.ProcessingTimeMs,
		)
	}

	if len(report.Results) > 0 {
		total := report.TotalTokenUsage
		fmt.Fprintln(w)
		fmt.Fprintln(w, "【トークン使用量】")
		fmt.Fprintf(w, "入力トークン: %d\n", total.InputTokens)
		fmt.Fprintf(w, "出力トークン: %d\n", total.OutputTokens)
		fmt.Fprintf(w, "コスト: $%.6f (¥%.2f)\n", total.CostUSD, total.CostJPY)
	}

	if len(report.Failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "【失敗した座標】")
		for _, failure := range report.Failures {
			fmt.Fprintf(w, "%s: %s\n", failure.Coordinate.String(), failure.Reason)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatInt(v *int) string {
	if v == nil {
		return unknown
	}
	return fmt.Sprintf("%d", *v)
}

func formatMeters(v *float64) string {
	if v == nil {
		return unknown
	}
	return fmt.Sprintf("%.1fm", *v)
}

func formatBool(v *bool) string {
	if v == nil {
		return unknown
	}
	if *v {
		return "あり"
	}
	return "なし"
}
