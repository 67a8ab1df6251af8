package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Dependency management",
}

var depAddCmd = &cobra.Command{
	Use:   "add <task-id> <depends-on-id>...",
	Short: "Add dependency: the first task depends on the others",
	Long: `Add dependencies where the first task DEPENDS ON each of the others.

Example: If Task B cannot start until Task A is done:
  tg dep add <task-B> <task-A>

This means:
  - Task A is the prerequisite (must be completed first)
  - Task B stays pending until Task A is completed
  - If Task A is blocked, Task B becomes blocked too

A dependency that would close a cycle is rejected with the cycle path.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runDepAdd,
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <task-id> <depends-on-id>",
	Short: "Remove dependency between two tasks",
	Args:  cobra.ExactArgs(2),
	RunE:  runDepRemove,
}

var depListCmd = &cobra.Command{
	Use:   "list <id>",
	Short: "List dependencies for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runDepList,
}

var depCheckCmd = &cobra.Command{
	Use:   "check <task-id> <depends-on-id>",
	Short: "Check whether a dependency would create a cycle",
	Args:  cobra.ExactArgs(2),
	RunE:  runDepCheck,
}

func init() {
	rootCmd.AddCommand(depCmd)
	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	depCmd.AddCommand(depListCmd)
	depCmd.AddCommand(depCheckCmd)
}

func runDepAdd(cmd *cobra.Command, args []string) error {
	taskID, dependsOn := args[0], args[1:]

	if len(dependsOn) == 1 {
		res, err := svc.AddDependency(taskID, dependsOn[0])
		if err != nil {
			return err
		}
		if IsJSONOutput() {
			OutputJSON(map[string]interface{}{"success": true, "dependency": res.Dependency, "cascade": res.Cascade})
			return nil
		}
		fmt.Printf("Added: %s depends on %s\n", taskID, dependsOn[0])
		formatter().Cascade(res.Cascade)
		return nil
	}

	batch, err := svc.AddDependencies(taskID, dependsOn)
	if err != nil {
		return err
	}
	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{
			"success": len(batch.Errors) == 0,
			"created": batch.Created,
			"skipped": batch.Skipped,
			"errors":  batch.Errors,
			"changes": batch.Changes,
		})
		return nil
	}
	for _, d := range batch.Created {
		fmt.Printf("Added: %s depends on %s\n", d.TaskID, d.DependsOnID)
	}
	for _, id := range batch.Skipped {
		fmt.Printf("Skipped: %s already depends on %s\n", taskID, id)
	}
	for _, e := range batch.Errors {
		fmt.Fprintf(os.Stderr, "Rejected %s: %s\n", e.DependsOnID, e.Message)
	}
	return nil
}

func runDepRemove(cmd *cobra.Command, args []string) error {
	taskID, dependsOnID := args[0], args[1]

	res, err := svc.RemoveDependency(taskID, dependsOnID)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{"success": true, "cascade": res})
		return nil
	}
	fmt.Println("Dependency removed")
	formatter().Cascade(res)
	return nil
}

func runDepList(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	dependsOn, err := svc.Dependencies(taskID)
	if err != nil {
		return err
	}
	dependents, err := svc.Dependents(taskID)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		OutputJSON(map[string]interface{}{"depends_on": dependsOn, "dependents": dependents})
		return nil
	}

	f := formatter()
	fmt.Printf("Dependencies for %s:\n", taskID)
	f.Section(fmt.Sprintf("Depends on (%d)", len(dependsOn)))
	for i := range dependsOn {
		f.TaskBrief(&dependsOn[i])
	}
	f.Section(fmt.Sprintf("Needed by (%d)", len(dependents)))
	for i := range dependents {
		f.TaskBrief(&dependents[i])
	}
	return nil
}

func runDepCheck(cmd *cobra.Command, args []string) error {
	check, err := svc.CheckCircular(args[0], args[1])
	if err != nil {
		return err
	}
	formatter().CircularCheck(check)
	return nil
}
