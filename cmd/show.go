package cmd

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	view, err := svc.GetTask(args[0])
	if err != nil {
		return err
	}
	waitingOn, err := svc.Blocking(view.ID)
	if err != nil {
		return err
	}
	holdingUp, err := svc.BlockedBy(view.ID)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{
			"task":       view,
			"waiting_on": waitingOn,
			"holding_up": holdingUp,
		})
		return nil
	}

	f := formatter()
	f.Task(view)
	if len(waitingOn) > 0 {
		f.Section("Waiting on")
		for i := range waitingOn {
			f.TaskBrief(&waitingOn[i])
		}
	}
	if len(holdingUp) > 0 {
		f.Section("Holding up")
		for i := range holdingUp {
			f.TaskBrief(&holdingUp[i])
		}
	}
	return nil
}
