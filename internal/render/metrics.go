package render

import (
	"fmt"
	"strings"

	"nutrigenie/internal/metrics"
)

// MetricsReport renders the admin usage and health report.
func MetricsReport(usage []metrics.DailyUsage, agents []metrics.AgentUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs, %d failed)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Failures))
	}

	if len(agents) > 0 {
		sb.WriteString("\n🤖 *Per Agent*\n")
		for _, a := range agents {
			sb.WriteString(fmt.Sprintf("• %s: %d calls, %d failed, avg %dms\n", a.AgentName, a.Calls, a.Failures, a.AvgLatencyMS))
		}
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Sessions: %d\n", health.ActiveSessions))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s in %d files\n", health.DataDiskSize, health.DataFiles))
	return sb.String()
}
