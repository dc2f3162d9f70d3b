package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/tma-autoreserve/internal/audit"
	"github.com/example/tma-autoreserve/internal/browser"
	"github.com/example/tma-autoreserve/internal/config"
	"github.com/example/tma-autoreserve/internal/domain/reservation"
	"github.com/example/tma-autoreserve/internal/workflow"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <payload>",
		Short: "Cancel the plate's current reservation and book the requested slot",
		Long: `Runs the full rebooking sequence against the member portal: sign in,
cancel the existing reservation for the plate (absence is fine), then book
the station, vehicle and time from the JSON payload.

The payload is a JSON object with optional keys "station", "plate" and
"reservation_time" ("YYYY-MM-DD HH:MM"); omitted keys fall back to the
built-in defaults. Credentials and portal URLs come from the environment.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReservation(cmd, args[0])
		},
	}
}

func runReservation(cmd *cobra.Command, payload string) error {
	// Payload and config problems should surface before a browser starts.
	req, err := reservation.ParsePayload(payload)
	if err != nil {
		return err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "target -> station=%s plate=%s time=%s\n", req.Station, req.Plate, req.ReservationTime)

	var trail *audit.Trail
	if cfg.AuditDatabaseURL != "" {
		trail, err = audit.Open(ctx, cfg.AuditDatabaseURL)
		if err != nil {
			return err
		}
		defer trail.Close()
	}
	runID := uuid.NewString()
	if err := trail.StartRun(ctx, runID, req.Station, req.Plate, req.ReservationTime); err != nil {
		log.Warn("audit start failed", "error", err)
	}

	sess, err := browser.NewSession(ctx, cfg.Headless)
	if err != nil {
		return err
	}
	defer sess.Close()

	recorder := browser.NewRecorder(cfg.EvidenceDir, log, nil)
	recorder.OnRecord = func(rec browser.Record) {
		if err := trail.RecordEvidence(ctx, runID, rec.ID, rec.Label, rec.URI); err != nil {
			log.Warn("audit evidence failed", "error", err)
		}
	}
	inter := browser.NewInteractor(log, recorder)
	locator := browser.NewRowLocator(log, cfg.MaxPages)
	orch := workflow.New(cfg, log, out, inter, recorder, locator)

	runErr := orch.Run(sess.Context(), req)
	if err := trail.FinishRun(ctx, runID, runErr); err != nil {
		log.Warn("audit finish failed", "error", err)
	}
	if runErr != nil {
		return runErr
	}
	fmt.Fprintln(out, "Reservation change completed")
	return nil
}
