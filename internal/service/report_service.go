package service

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"plew-backend/internal/repository"
)

// ReportService renders a downloadable study report over a user's completed
// packs.
type ReportService interface {
	GenerateStudyReport(email string) ([]byte, error)
}

type reportService struct {
	packRepo repository.CompletedPackRepository
}

func NewReportService(packRepo repository.CompletedPackRepository) ReportService {
	return &reportService{packRepo: packRepo}
}

func (s *reportService) GenerateStudyReport(email string) ([]byte, error) {
	packs, err := s.packRepo.GetByUser(email)
	if err != nil {
		return nil, fmt.Errorf("loading completed packs: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, "PLEW Study Report")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Student: %s", email))
	pdf.Ln(10)

	if len(packs) == 0 {
		pdf.Cell(0, 8, "No completed practice sessions yet.")
	} else {
		totalQuestions := 0
		totalCorrect := 0
		totalSeconds := 0

		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 8, "Completed", "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 8, "Level", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, "Score", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, "Percent", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, "Time (s)", "1", 1, "C", false, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, p := range packs {
			totalQuestions += p.TotalQuestions
			totalCorrect += p.Score
			totalSeconds += p.TimeTakenSeconds

			pdf.CellFormat(40, 8, p.CompletedAt.Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 8, fmt.Sprintf("%d", p.Level), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 8, fmt.Sprintf("%d / %d", p.Score, p.TotalQuestions), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 8, fmt.Sprintf("%d%%", p.ScorePercentage()), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 8, fmt.Sprintf("%d", p.TimeTakenSeconds), "1", 1, "C", false, 0, "")
		}

		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 11)
		accuracy := 0.0
		if totalQuestions > 0 {
			accuracy = float64(totalCorrect) / float64(totalQuestions) * 100
		}
		pdf.Cell(0, 8, fmt.Sprintf("Sessions: %d    Questions: %d    Accuracy: %.1f%%    Time: %ds",
			len(packs), totalQuestions, accuracy, totalSeconds))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}
	return buf.Bytes(), nil
}
