package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Converger brings nodes into their desired state.
//
// The zero value executes corrective statements and logs through
// slog.Default(). Logging never changes the outcome.
type Converger struct {
	// Logger receives phase transitions. Nil means slog.Default().
	Logger *slog.Logger

	// DryRun reports corrective statements instead of executing them.
	DryRun bool
}

// Converge checks node and, if it is unsatisfied, converges its
// prerequisites, applies its corrective statements and verifies the result.
// With dryRun set nothing is executed and the result is StateOk.
func Converge(ctx context.Context, node *Node, db DB, dryRun bool) (State, error) {
	c := &Converger{DryRun: dryRun}
	return c.Converge(ctx, node, db)
}

// Ensure is Converge without dry run.
func Ensure(ctx context.Context, node *Node, db DB) (State, error) {
	return Converge(ctx, node, db, false)
}

// Converge runs the convergence protocol for node against db.
func (c *Converger) Converge(ctx context.Context, node *Node, db DB) (State, error) {
	log := c.logger().With("schema", node.Name)
	log.Debug("[?] ensuring schema state")

	if c.DryRun {
		log.Info("[check]", "query", node.checkQuery)
	}

	meet, err := evaluate(ctx, db, node)
	if err != nil {
		return StateOk, checkError(node.Name, err)
	}
	if len(meet) == 0 {
		log.Debug("[+] schema state is met")
		return StateOk, nil
	}

	// Prerequisite errors already name the failing prerequisite.
	for _, req := range node.requires {
		if _, err := c.Converge(ctx, req, db); err != nil {
			return StateOk, err
		}
	}

	log.Info("[!] meeting schema state", "statements", len(meet))

	if c.DryRun {
		for _, stmt := range meet {
			log.Info("[would meet]", "statement", stmt)
		}
		return StateOk, nil
	}

	for i, stmt := range meet {
		log.Debug("[>] executing", "step", i+1, "statement", stmt)
		if err := db.Exec(ctx, stmt); err != nil {
			return StateOk, meetError(node.Name, fmt.Errorf("statement %d: %w", i+1, err))
		}
	}

	log.Debug("[~] verifying schema state is met")
	remaining, err := evaluate(ctx, db, node)
	if err != nil {
		return StateOk, meetError(node.Name, err)
	}
	if len(remaining) > 0 {
		log.Warn("[x] schema state still unmet after meeting", "remaining", len(remaining))
		return StateOk, meetError(node.Name, ErrVerificationFailed)
	}

	log.Debug("[+] schema state changed")
	return StateChanged, nil
}

func (c *Converger) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// evaluate runs the check query and returns the statements still needed.
func evaluate(ctx context.Context, db DB, node *Node) ([]string, error) {
	if node.check == nil {
		return nil, errors.New("no check function")
	}

	rows, err := db.Query(ctx, node.checkQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return node.check(rows)
}
