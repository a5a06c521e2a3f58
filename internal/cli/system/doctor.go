package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitlog/internal/backup"
	"github.com/julianstephens/habitlog/internal/cli"
	"github.com/julianstephens/habitlog/internal/utils"
)

type DoctorCmd struct {
	Timezone string `help:"Timezone used to compute calendar days." env:"HABITLOG_TIMEZONE" default:"Local"`
}

type checkStatus int

const (
	statusOK checkStatus = iota
	statusWarn
	statusFail
	statusSkip
)

type checkResult struct {
	name   string
	status checkStatus
	detail string
}

func (r checkResult) String() string {
	var line string
	switch r.status {
	case statusOK:
		line = cli.SuccessStyle.Render("✓ " + r.name + ": OK")
	case statusWarn:
		line = cli.WarningStyle.Render("⚠ " + r.name + ": WARNING")
	case statusFail:
		line = cli.FailureStyle.Render("✗ " + r.name + ": FAIL")
	default:
		line = cli.MutedStyle.Render("⊘ " + r.name + ": SKIPPED")
	}
	if r.detail != "" {
		line += "\n   " + cli.MutedStyle.Render(r.detail)
	}
	return line
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println(cli.TitleStyle.Render("Running diagnostics..."))
	ctx.Println()

	results := cmd.runChecks(ctx)

	hasError := false
	for _, r := range results {
		ctx.Println(r)
		if r.status == statusFail {
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println(cli.FailureStyle.Render("Diagnostics completed with errors."))
		return errors.New("one or more health checks failed")
	}
	ctx.Println(cli.SuccessStyle.Render("All diagnostics passed!"))
	return nil
}

func (cmd *DoctorCmd) runChecks(ctx *cli.Context) []checkResult {
	var results []checkResult

	reachable := checkReachable(ctx)
	results = append(results, reachable)
	if reachable.status == statusOK {
		defer ctx.Store.Close()
	}

	dbChecks := []struct {
		name string
		fn   func(*cli.Context) (checkStatus, string)
	}{
		{"Schema version", checkSchemaVersion},
		{"Duplicate active records", checkDuplicateRecords},
		{"Orphaned records", checkOrphanedRecords},
	}
	for _, c := range dbChecks {
		if reachable.status != statusOK {
			results = append(results, checkResult{name: c.name, status: statusSkip, detail: "database not reachable"})
			continue
		}
		status, detail := c.fn(ctx)
		results = append(results, checkResult{name: c.name, status: status, detail: detail})
	}

	status, detail := checkBackups(ctx)
	results = append(results, checkResult{name: "Backups present", status: status, detail: detail})

	status, detail = checkTimezone(cmd.Timezone)
	results = append(results, checkResult{name: "Clock/timezone", status: status, detail: detail})

	return results
}

func checkReachable(ctx *cli.Context) checkResult {
	r := checkResult{name: "Database reachable"}
	if err := ctx.Store.Load(); err != nil {
		r.status, r.detail = statusFail, err.Error()
		return r
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ctx.Store.Ping(pingCtx); err != nil {
		r.status, r.detail = statusFail, err.Error()
	}
	return r
}

func checkSchemaVersion(ctx *cli.Context) (checkStatus, string) {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return statusFail, err.Error()
	}
	if current < latest {
		return statusFail, fmt.Sprintf("database is at version %d, latest is %d; run 'habitlog migrate'", current, latest)
	}
	return statusOK, fmt.Sprintf("version %d", current)
}

func checkDuplicateRecords(ctx *cli.Context) (checkStatus, string) {
	n, err := ctx.Store.CountDuplicateRecords(context.Background())
	if err != nil {
		return statusFail, err.Error()
	}
	if n > 0 {
		return statusFail, fmt.Sprintf("%d habit/date pairs have more than one active record", n)
	}
	return statusOK, ""
}

func checkOrphanedRecords(ctx *cli.Context) (checkStatus, string) {
	n, err := ctx.Store.CountOrphanedRecords(context.Background())
	if err != nil {
		return statusFail, err.Error()
	}
	if n > 0 {
		return statusWarn, fmt.Sprintf("%d active records belong to deleted habits", n)
	}
	return statusOK, ""
}

func checkBackups(ctx *cli.Context) (checkStatus, string) {
	if !ctx.IsSQLite() {
		return statusSkip, "backups are managed by the PostgreSQL server"
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return statusWarn, err.Error()
	}
	if len(backups) == 0 {
		return statusWarn, "no backups found; run 'habitlog backup create'"
	}
	return statusOK, fmt.Sprintf("latest %s", backups[0].Name)
}

func checkTimezone(timezone string) (checkStatus, string) {
	if !utils.ValidateTimezone(timezone) {
		return statusFail, fmt.Sprintf("unknown timezone %q; use an IANA name such as Europe/Berlin or Local", timezone)
	}
	loc, err := utils.LoadLocation(timezone)
	if err != nil {
		return statusFail, err.Error()
	}
	now := time.Now()
	if now.Year() < 2000 {
		return statusFail, fmt.Sprintf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	return statusOK, fmt.Sprintf("today is %s in %s", utils.Today(now, loc), loc)
}
