package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"veridex/internal/listing"
	"veridex/internal/pipeline"
	"veridex/internal/platform/config"
	"veridex/internal/platform/logger"
)

func newReconcileCommand() *cobra.Command {
	var limit int
	var showEvidence bool

	cmd := &cobra.Command{
		Use:   "reconcile <record.json> [record.json ...]",
		Short: "Reconcile one or more records against the configured sources",
		Long: "Reads directory records from JSON files and runs them through the " +
			"reconciliation pipeline in-process. Source endpoints and scoring " +
			"overrides come from the VERIDEX_* environment, the same as the server.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			recs := make([]listing.Record, 0, len(args))
			for _, path := range args {
				rec, err := loadRecord(path)
				if err != nil {
					return fmt.Errorf("load %s: %w", path, err)
				}
				recs = append(recs, rec)
			}

			log := logger.New()
			stageOne, stageTwo := buildStages(cfg)
			svc := pipeline.New(stageOne, stageTwo, cfg.Scoring, cfg.Blend, cfg.Thresholds,
				pipeline.WithLogger(log),
			)

			ctx := cmd.Context()
			if len(recs) == 1 {
				return runStreamed(cmd, svc, recs[0], showEvidence)
			}

			states, err := svc.Batch(ctx, recs, limit)
			if err != nil {
				return err
			}
			for _, state := range states {
				if state == nil {
					continue
				}
				printDecision(cmd, state, showEvidence)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", pipeline.DefaultBatchLimit, "Maximum concurrent runs for batches")
	cmd.Flags().BoolVar(&showEvidence, "evidence", false, "Include the per-source evidence table")

	return cmd
}

func runStreamed(cmd *cobra.Command, svc *pipeline.Service, rec listing.Record, showEvidence bool) error {
	events := make(chan pipeline.StageEvent, 4)
	done := make(chan error, 1)
	go func() {
		_, err := svc.RunStream(cmd.Context(), rec, events)
		done <- err
	}()

	for event := range events {
		cmd.Printf("%-20s %s\n", event.Stage, event.Timestamp.Format("15:04:05.000"))
		if event.Stage == pipeline.StageRouted {
			printDecision(cmd, &event.State, showEvidence)
		}
	}
	return <-done
}

func loadRecord(path string) (listing.Record, error) {
	var rec listing.Record
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, err
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return rec, nil
}

func printDecision(cmd *cobra.Command, state *pipeline.RunState, showEvidence bool) {
	d := state.Decision
	if d == nil {
		cmd.Printf("run %s produced no decision\n", state.RunID)
		return
	}

	cmd.Println(renderTable(
		[]string{"Run", "Record", "Action", "Confidence", "Severity", "Priority"},
		[][]string{{
			shortID(state.RunID),
			shortID(state.Record.ID),
			string(d.Action),
			strconv.Itoa(d.Confidence) + "%",
			string(d.Severity),
			strconv.Itoa(d.Priority),
		}},
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight},
	))

	if len(d.Discrepancies) > 0 {
		rows := make([][]string, 0, len(d.Discrepancies))
		for _, disc := range d.Discrepancies {
			rows = append(rows, []string{
				string(disc.Field),
				disc.Current,
				disc.Suggested,
				disc.Source,
				fmt.Sprintf("%.2f", disc.Confidence),
				string(disc.Severity),
			})
		}
		cmd.Println(renderTable(
			[]string{"Field", "Current", "Suggested", "Source", "Confidence", "Severity"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		))
	}

	if len(d.Anomalies) > 0 {
		rows := make([][]string, 0, len(d.Anomalies))
		for _, a := range d.Anomalies {
			rows = append(rows, []string{a.Name, string(a.Severity), string(a.FraudRisk), a.Detail})
		}
		cmd.Println(renderTable(
			[]string{"Anomaly", "Severity", "Fraud Risk", "Detail"},
			rows,
			nil,
		))
	}

	if showEvidence {
		rows := make([][]string, 0, len(state.Evidence))
		for _, e := range state.Evidence {
			rows = append(rows, []string{e.Source, string(e.Outcome), fmt.Sprintf("%.2f", e.Weight), e.Err})
		}
		cmd.Println(renderTable(
			[]string{"Source", "Outcome", "Weight", "Error"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
		))
	}
}

func shortID(id uuid.UUID) string {
	s := id.String()
	return s[:8]
}
