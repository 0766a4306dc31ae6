// Package console is the interactive terminal front end used by intake operators.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"tb-intake/internal/delivery/dto"
	"tb-intake/internal/domain/entity"
	"tb-intake/internal/domain/repository"
	"tb-intake/internal/report"
	"tb-intake/internal/service"
	"tb-intake/internal/usecase"
	"tb-intake/internal/wizard"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	actionQuit    = "quit"
	actionSearch  = "search"
	actionBack    = "back"
	actionCancel  = "cancel"
	actionWizard  = "wizard"
	actionReports = "reports"
	actionYes     = "yes"
	actionNo      = "no"
	actionSubmit  = "submit"
	actionEdit    = "edit"
	actionRetry   = "retry"
	actionLeave   = "leave"
)

// Options configures a Console.
type Options struct {
	NavigationDelay time.Duration
	IdempotencyKeys bool
	Operator        string
}

type Console struct {
	log            *logrus.Logger
	out            io.Writer
	prompter       Prompter
	patientUsecase usecase.PatientUsecase
	reportUsecase  usecase.ReportUsecase
	diagnosisRepo  repository.DiagnosisRepository
	reportRepo     repository.ReportRepository
	auditService   service.AuditService
	surface        report.FileSurface
	opts           Options
}

func NewConsole(
	log *logrus.Logger,
	out io.Writer,
	prompter Prompter,
	patientUsecase usecase.PatientUsecase,
	reportUsecase usecase.ReportUsecase,
	diagnosisRepo repository.DiagnosisRepository,
	reportRepo repository.ReportRepository,
	auditService service.AuditService,
	surface report.FileSurface,
	opts Options,
) *Console {
	if opts.Operator == "" {
		opts.Operator = "console"
	}
	return &Console{
		log:            log,
		out:            out,
		prompter:       prompter,
		patientUsecase: patientUsecase,
		reportUsecase:  reportUsecase,
		diagnosisRepo:  diagnosisRepo,
		reportRepo:     reportRepo,
		auditService:   auditService,
		surface:        surface,
		opts:           opts,
	}
}

// Run loops over patient search until the operator quits. Aborting a prompt quits too.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, titleStyle.Render("TB Screening Intake"))

	for {
		search, err := c.prompter.Input(ctx, "Find patient", "name or patient code, blank for all")
		if err != nil {
			return quit(err)
		}

		list, err := c.patientUsecase.List(ctx, search)
		if err != nil {
			c.Notify(entity.SeverityError, "Failed to load patients")
			continue
		}
		if list.Total == 0 {
			c.Notify(entity.SeverityInfo, "No patients match "+search)
			continue
		}

		choices := make([]Choice, 0, len(list.Patients)+2)
		for _, p := range list.Patients {
			choices = append(choices, Choice{Label: fmt.Sprintf("%s (%s)", p.FullName, p.PatientCode), Value: p.ID})
		}
		choices = append(choices, Choice{"New search", actionSearch}, Choice{"Quit", actionQuit})

		choice, err := c.prompter.Select(ctx, "Select patient", fmt.Sprintf("%d found", list.Total), choices)
		if err != nil {
			return quit(err)
		}

		switch choice {
		case actionQuit:
			return nil
		case actionSearch:
			continue
		}

		if err := c.patientMenu(ctx, choice); err != nil {
			return quit(err)
		}
	}
}

func (c *Console) patientMenu(ctx context.Context, patientID string) error {
	patient, err := c.patientUsecase.Get(ctx, patientID)
	if err != nil {
		c.log.Warnf("Failed to load patient %s: %+v", patientID, err)
		if errors.Is(err, usecase.ErrPatientNotFound) {
			c.Notify(entity.SeverityError, "Patient not found")
		} else {
			c.Notify(entity.SeverityError, "Failed to load patient")
		}
	}

	for {
		choice, err := c.prompter.Select(ctx, patientTitle(patientID, patient), "", []Choice{
			{"Start diagnosis wizard", actionWizard},
			{"View reports", actionReports},
			{"Back", actionBack},
		})
		if err != nil {
			return err
		}

		switch choice {
		case actionWizard:
			target, err := c.runWizard(ctx, patientID, patient)
			if err != nil {
				return err
			}
			if target != "" {
				if err := c.showReports(ctx, strings.TrimPrefix(target, "/reports/")); err != nil {
					return err
				}
			}
		case actionReports:
			if err := c.showReports(ctx, patientID); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// runWizard walks the questionnaire and submits it. It returns the navigation target
// after a successful submission, or "" when the operator left the wizard.
func (c *Console) runWizard(ctx context.Context, patientID string, patient *dto.PatientResponse) (string, error) {
	ctrl := wizard.NewController()
	nav := newChannelNavigator()

	opts := []usecase.PipelineOption{
		usecase.WithNavigationDelay(c.opts.NavigationDelay),
		usecase.WithAudit(c.auditService, c.opts.Operator),
	}
	if c.opts.IdempotencyKeys {
		opts = append(opts, usecase.WithIdempotencyKey(uuid.New().String()))
	}
	pipeline := usecase.NewSubmissionPipeline(c.log, c.diagnosisRepo, c.reportRepo, c, nav, opts...)

	for {
		if q, ok := ctrl.Current(); ok {
			choices := []Choice{{"Yes", actionYes}, {"No", actionNo}}
			if ctrl.Step() > 0 {
				choices = append(choices, Choice{"Back", actionBack})
			}
			choices = append(choices, Choice{"Cancel", actionCancel})

			choice, err := c.prompter.Select(ctx, q.Prompt, c.header(patientID, patient, ctrl), choices)
			if err != nil {
				return "", err
			}

			switch choice {
			case actionYes, actionNo:
				if err := ctrl.Answer(q.Key, choice == actionYes); err != nil {
					return "", err
				}
			case actionBack:
				ctrl.GoBack()
			default:
				return "", nil
			}
			continue
		}

		choice, err := c.prompter.Select(ctx, "Review answers", c.review(patientID, patient, ctrl), []Choice{
			{"Submit", actionSubmit},
			{"Edit answers", actionEdit},
			{"Back", actionBack},
			{"Cancel", actionCancel},
		})
		if err != nil {
			return "", err
		}

		switch choice {
		case actionSubmit:
			_, err := pipeline.Submit(ctx, entity.ID(patientID), ctrl.Answers())
			if err == nil {
				return c.awaitNavigation(ctx, nav)
			}

			var subErr *usecase.SubmissionError
			if !errors.As(err, &subErr) {
				return "", err
			}
			if subErr.Phase == usecase.PhaseGenerateReport {
				return c.recoverReport(ctx, pipeline, nav, patientID, subErr.DiagnosisID)
			}
			// diagnosis was not created: stay in review so the operator can resubmit
		case actionEdit:
			ctrl.RestartFromFirst()
		case actionBack:
			ctrl.GoBack()
		default:
			return "", nil
		}
	}
}

func (c *Console) recoverReport(ctx context.Context, pipeline *usecase.SubmissionPipeline, nav *channelNavigator, patientID string, diagnosisID entity.ID) (string, error) {
	for {
		choice, err := c.prompter.Select(ctx, "Report generation failed",
			fmt.Sprintf("Diagnosis %s was saved.", diagnosisID), []Choice{
				{"Retry report generation", actionRetry},
				{"Leave without report", actionLeave},
			})
		if err != nil {
			return "", err
		}
		if choice != actionRetry {
			return "", nil
		}

		_, err = pipeline.RetryReport(ctx, entity.ID(patientID), diagnosisID)
		if err == nil {
			return c.awaitNavigation(ctx, nav)
		}

		var subErr *usecase.SubmissionError
		if !errors.As(err, &subErr) {
			return "", err
		}
	}
}

func (c *Console) awaitNavigation(ctx context.Context, nav *channelNavigator) (string, error) {
	select {
	case target := <-nav.ch:
		return target, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Console) showReports(ctx context.Context, patientID string) error {
	for {
		resp, err := c.reportUsecase.ListForPatient(ctx, patientID)
		if err != nil {
			return err
		}
		for _, n := range resp.Notifications {
			c.Notify(entity.Severity(n.Severity), n.Message)
		}

		if len(resp.Reports) == 0 {
			fmt.Fprintln(c.out, subtitleStyle.Render("No reports found"))
		}

		choices := make([]Choice, 0, len(resp.Reports)+1)
		for _, r := range resp.Reports {
			fmt.Fprintln(c.out, panelStyle.Render(
				labelStyle.Render("Report #"+r.ID+"  "+r.CreatedAt.Format("2006-01-02 15:04"))+"\n"+
					strings.Join(r.Lines, "\n"),
			))
			choices = append(choices, Choice{Label: "Print report #" + r.ID, Value: r.ID})
		}
		choices = append(choices, Choice{"Back", actionBack})

		choice, err := c.prompter.Select(ctx, "Reports", patientTitle(patientID, resp.Patient), choices)
		if err != nil {
			return err
		}
		if choice == actionBack {
			return nil
		}

		doc, err := c.reportUsecase.Print(ctx, patientID, choice, c.surface)
		if err != nil {
			c.log.Warnf("Failed to print report %s: %+v", choice, err)
			c.Notify(entity.SeverityError, "Failed to print report")
			continue
		}
		c.Notify(entity.SeveritySuccess, "Saved printable report to "+c.surface.Path(*doc))
	}
}

// Notify prints a notification line.
func (c *Console) Notify(severity entity.Severity, message string) {
	c.log.Debugf("notification %s: %s", severity, message)
	fmt.Fprintln(c.out, renderNotification(severity, message))
}

func (c *Console) header(patientID string, patient *dto.PatientResponse, ctrl *wizard.Controller) string {
	p := ctrl.Progress()
	return lipgloss.JoinVertical(lipgloss.Left,
		patientTitle(patientID, patient),
		fmt.Sprintf("Question %d of %d", ctrl.Step()+1, p.Total),
		progressBar(p.Percent),
	)
}

func (c *Console) review(patientID string, patient *dto.PatientResponse, ctrl *wizard.Controller) string {
	answers := ctrl.Answers()
	lines := []string{patientTitle(patientID, patient), progressBar(ctrl.Progress().Percent)}
	for _, q := range entity.Questions() {
		v, _ := answers.Get(q.Key)
		lines = append(lines, labelStyle.Render(q.Prompt)+"  "+renderAnswer(v))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func patientTitle(patientID string, patient *dto.PatientResponse) string {
	if patient == nil {
		return "Patient " + patientID
	}
	return fmt.Sprintf("%s (%s)", patient.FullName, patient.PatientCode)
}

func quit(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}

type channelNavigator struct {
	ch chan string
}

func newChannelNavigator() *channelNavigator {
	return &channelNavigator{ch: make(chan string, 1)}
}

func (n *channelNavigator) Navigate(target string) {
	select {
	case n.ch <- target:
	default:
	}
}
