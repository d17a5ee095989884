// Where: internal/command/output.go
// What: Output helpers for command adapters.
// Why: Centralize UserInterface usage and result rendering.
package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/skiffhq/skiff-cli/internal/infra/interaction"
	"github.com/skiffhq/skiff-cli/internal/infra/ui"
	usecase "github.com/skiffhq/skiff-cli/internal/usecase/deploy"
)

func legacyUI(out io.Writer) ui.UserInterface {
	return ui.NewLegacyUI(out)
}

// resolveEmojiEnabled decides whether decorated output is wanted.
// Explicit flags win, then NO_EMOJI, then the terminal itself.
func resolveEmojiEnabled(out io.Writer, emoji, noEmoji bool) (bool, error) {
	if emoji && noEmoji {
		return false, errors.New("--emoji and --no-emoji cannot be used together")
	}
	if emoji {
		return true, nil
	}
	if noEmoji {
		return false, nil
	}
	if strings.TrimSpace(os.Getenv("NO_EMOJI")) != "" {
		return false, nil
	}
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	if term == "dumb" {
		return false, nil
	}
	if file, ok := out.(*os.File); ok {
		return interaction.IsTerminal(file), nil
	}
	return false, nil
}

// printDeploySummary renders one block per region plus a closing line.
// Failed regions are reported alongside successful ones.
func printDeploySummary(console ui.UserInterface, results []usecase.RegionResult, managed bool) {
	failed := 0
	for _, res := range results {
		rows := []ui.KeyValue{
			{Key: "Status", Value: regionStatus(res)},
		}
		if res.FunctionArn != "" {
			rows = append(rows, ui.KeyValue{Key: "Function", Value: res.FunctionArn})
		}
		if managed {
			rows = append(rows,
				ui.KeyValue{Key: "Event mappings", Value: countOutcomes(len(res.Mappings), failedMappings(res.Mappings))},
				ui.KeyValue{Key: "Schedules", Value: countOutcomes(len(res.Schedules), failedSchedules(res.Schedules))},
			)
		}
		if res.Err != nil {
			failed++
			rows = append(rows, ui.KeyValue{Key: "Error", Value: res.Err})
		}
		console.Block("🌍", res.Region, rows)
	}

	switch {
	case len(results) == 0:
	case failed == 0:
		console.Success(fmt.Sprintf("Deployed to %d region(s)", len(results)))
	default:
		console.Warn(fmt.Sprintf("Deploy finished with failures: %d of %d region(s)", failed, len(results)))
	}
}

func regionStatus(res usecase.RegionResult) string {
	switch {
	case res.Err != nil:
		return "failed"
	case res.Created:
		return "created"
	default:
		return "updated"
	}
}

func failedMappings(results []usecase.MappingResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func failedSchedules(results []usecase.ScheduleResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func countOutcomes(total, failed int) string {
	if failed == 0 {
		return fmt.Sprintf("%d applied", total)
	}
	return fmt.Sprintf("%d applied, %d failed", total-failed, failed)
}

// printPackageSummary renders the archive block after a package run.
func printPackageSummary(console ui.UserInterface, functionName, archivePath string, size int) {
	console.Block("📦", "Package ready", []ui.KeyValue{
		{Key: "Function", Value: functionName},
		{Key: "Archive", Value: archivePath},
		{Key: "Size", Value: humanize.Bytes(uint64(size))},
	})
}
