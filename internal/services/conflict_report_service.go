package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhruby/digplan/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ConflictReportService exports the current conflict register as an
// Excel workbook for coordinators
type ConflictReportService struct {
	projectRepo *repositories.ProjectRepository
}

func NewConflictReportService(projectRepo *repositories.ProjectRepository) *ConflictReportService {
	return &ConflictReportService{
		projectRepo: projectRepo,
	}
}

const reportSheet = "Conflicts"

// GenerateConflictReport builds a workbook listing every project
// currently flagged as conflicting, most recent first
func (s *ConflictReportService) GenerateConflictReport() (*excelize.File, error) {
	projects, err := s.projectRepo.GetConflicted()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(reportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"Project ID", "Name", "State", "Start", "End", "Conflicting Projects", "Municipalities"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(reportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	for row, project := range projects {
		values := []interface{}{
			project.ID.String(),
			project.Name,
			string(project.State),
			project.Interval.Start.Format("2006-01-02"),
			project.Interval.End.Format("2006-01-02"),
			strings.Join(project.ConflictingProjectIDs, ", "),
			strings.Join(project.AffectedMunicipalities, ", "),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(reportSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

// ReportFilename returns a stable download name for the report
func (s *ConflictReportService) ReportFilename() string {
	return fmt.Sprintf("conflict-report-%s.xlsx", time.Now().Format("2006-01-02"))
}
