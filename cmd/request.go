package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet/internal/apperr"
	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/workflow"
)

var (
	requestComment string
	requestDelete  bool
	requestStatus  string
	resolveComment string
)

var requestCmd = &cobra.Command{
	Use:     "request",
	Aliases: []string{"requests"},
	Short:   "Submit and resolve modification requests",
}

var requestSubmitCmd = &cobra.Command{
	Use:   "submit <date> [<start> <end>]",
	Short: "Propose hours for a day, or its deletion with --delete",
	Example: `  timesheet request submit 2025-03-14 18:00 02:30 --comment "left late"
  timesheet request submit 2025-03-15 --delete`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runRequestSubmit,
}

var requestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List requests, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRequestList,
}

var requestApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending request and apply it to the entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(cmd, args[0], model.RequestApproved)
	},
}

var requestRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(cmd, args[0], model.RequestRejected)
	},
}

func init() {
	requestSubmitCmd.Flags().StringVar(&requestComment, "comment", "", "Optional comment for the admin")
	requestSubmitCmd.Flags().BoolVar(&requestDelete, "delete", false, "Request deletion of the day's entry")
	requestListCmd.Flags().StringVar(&requestStatus, "status", "", "Filter by status: pending, approved, rejected")
	requestApproveCmd.Flags().StringVar(&resolveComment, "comment", "", "Admin comment")
	requestRejectCmd.Flags().StringVar(&resolveComment, "comment", "", "Admin comment")

	requestCmd.AddCommand(requestSubmitCmd)
	requestCmd.AddCommand(requestListCmd)
	requestCmd.AddCommand(requestApproveCmd)
	requestCmd.AddCommand(requestRejectCmd)
}

func runRequestSubmit(cmd *cobra.Command, args []string) error {
	in := workflow.SubmitInput{Date: args[0], Comment: requestComment}
	switch {
	case len(args) == 3:
		in.Start, in.End = args[1], args[2]
	case len(args) == 2:
		return apperr.Validation("give both start and end times")
	}
	if requestDelete {
		in.Action = model.ActionDelete
	}

	return withApp(cmd.Context(), func(a *app) error {
		req, err := a.workflow.Submit(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Submitted request %s (%s %s).\n", req.ID, req.Action, req.Date)
		return nil
	})
}

func runRequestList(cmd *cobra.Command, args []string) error {
	var filter *model.RequestStatus
	if requestStatus != "" {
		st := model.RequestStatus(requestStatus)
		filter = &st
	}
	return withApp(cmd.Context(), func(a *app) error {
		list, err := a.workflow.List(cmd.Context(), filter)
		if err != nil {
			return err
		}
		printRequests(cmd.OutOrStdout(), list)
		return nil
	})
}

func runResolve(cmd *cobra.Command, id string, status model.RequestStatus) error {
	var comment *string
	if resolveComment != "" {
		comment = &resolveComment
	}
	return withApp(cmd.Context(), func(a *app) error {
		req, err := a.workflow.Resolve(cmd.Context(), id, status, comment)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Request %s %s.\n", req.ID, req.Status)
		return nil
	})
}

func printRequests(w io.Writer, list []model.ModificationRequest) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No requests found.")
		return
	}
	for _, r := range list {
		what := fmt.Sprintf("%s–%s", r.StartTime, r.EndTime)
		if r.IsDeletion() {
			what = "delete"
		}
		fmt.Fprintf(w, "%s  %s  %-11s  %-8s  %s\n",
			r.ID, r.Date, what, r.Status, r.CreatedAt.Local().Format("2006-01-02 15:04"))
		if r.Comment != nil && *r.Comment != "" {
			fmt.Fprintf(w, "    client: %s\n", *r.Comment)
		}
		if r.AdminComment != nil && *r.AdminComment != "" {
			fmt.Fprintf(w, "    admin:  %s\n", *r.AdminComment)
		}
	}
}
