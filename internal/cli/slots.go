package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/engine"
)

var (
	slotsTasksPath string
	slotsSelect    []string
	slotsMax       int
	slotsDays      int
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Generate candidate slots for movable tasks",
	Long: `Generate bounded candidate placement slots for the selected tasks.

Busy time is taken from every other active task; candidates are snap-aligned
starts inside the configured work-hour window, capped per task so planner
prompts stay small. The emitted slot catalog is what a plan.v2 place op may
reference by slot_id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(slotsSelect) == 0 {
			return fmt.Errorf("at least one --select uuid is required")
		}
		payload, err := loadPayload(slotsTasksPath)
		if err != nil {
			return err
		}

		result, err := newEngine().Slots(&engine.SlotsRequest{
			Payload:         payload,
			Selected:        slotsSelect,
			MaxSlotsPerTask: slotsMax,
			MaxDaysScan:     slotsDays,
		})
		if err != nil {
			return err
		}

		if jsonOutput() {
			return outputJSON(map[string]any{
				"candidates":   result.Candidates,
				"slot_catalog": result.Catalog,
			})
		}

		uuids := make([]string, 0, len(result.Candidates))
		for uuid := range result.Candidates {
			uuids = append(uuids, uuid)
		}
		sort.Strings(uuids)

		for _, uuid := range uuids {
			slotList := result.Candidates[uuid]
			PrintSection(fmt.Sprintf("Candidates for %s (%s)", uuid, PrintCount(len(slotList), "slot", "slots")))
			if len(slotList) == 0 {
				PrintDim("no free time in the visible window")
				continue
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Slot", "Day", "Start", "Due"})
			for _, s := range slotList {
				tw.AppendRow(table.Row{s.ID, s.DayKey, s.StartLabel, s.DueLabel})
			}
			tw.Render()
		}
		return nil
	},
}

func init() {
	slotsCmd.Flags().StringVar(&slotsTasksPath, "tasks", "tasks.json", "Task export or payload file")
	slotsCmd.Flags().StringArrayVar(&slotsSelect, "select", nil, "Movable task uuid (repeatable)")
	slotsCmd.Flags().IntVar(&slotsMax, "max", 0, "Max slots per task (0 = configured cap)")
	slotsCmd.Flags().IntVar(&slotsDays, "days", 0, "Max days to scan (0 = full view)")
}
