package main

import (
	"fmt"
	"log"

	"plew-backend/internal/model"
	"plew-backend/internal/search"
)

// runSeed pushes a small set of sample CSAT-style reading questions to the
// search index so a fresh deployment has something to practice on.
func runSeed(index search.QuestionIndex) {
	questions := []model.Question{
		{
			ObjectID: "seed-l1-001",
			Question: "Which of the following best describes the purpose of the passage?",
			Passage:  "Dear residents, the community center will be closed for renovation from March 3rd to March 28th. During this period, weekly fitness classes will be held at the Riverside Annex instead. We apologize for any inconvenience and look forward to welcoming you back to the improved facilities.",
			Choices: []string{
				"to advertise new fitness classes",
				"to announce a temporary facility closure",
				"to recruit volunteers for a renovation",
				"to apologize for cancelled classes",
				"to introduce the Riverside Annex",
			},
			CorrectAnswer: "to announce a temporary facility closure",
			Level:         1,
			Source:        "sample",
		},
		{
			ObjectID:      "seed-l2-001",
			Question:      "Choose the word that best completes the blank.",
			Passage:       "Habits are powerful precisely because they are automatic. Once a behavior becomes habitual, it no longer requires deliberate ______; it simply unfolds whenever the triggering situation appears.",
			Choices:       []string{"attention", "imitation", "hesitation", "celebration", "compensation"},
			CorrectAnswer: "attention",
			Level:         2,
			Source:        "sample",
		},
		{
			ObjectID:      "seed-l3-001",
			Question:      "Which sentence does NOT fit the flow of the passage?",
			Passage:       "(1) Urban gardens do more than supply fresh vegetables. (2) They bring neighbors together around a shared project. (3) Most vegetables require six hours of direct sunlight per day. (4) Studies link community gardening with lower stress and stronger local ties. (5) In this sense, a garden plot is also a social institution.",
			Choices:       []string{"(1)", "(2)", "(3)", "(4)", "(5)"},
			CorrectAnswer: "(3)",
			Level:         3,
			Source:        "sample",
		},
		{
			ObjectID: "seed-l4-001",
			Question: "What is the best title for the passage?",
			Passage:  "When economists measure productivity, they count what markets price. A parent teaching a child to read, a neighbor repairing a fence, a volunteer staffing a shelter: all of this labor vanishes from the ledger. The result is a statistical portrait that systematically understates the work that sustains communities.",
			Choices: []string{
				"The Hidden Costs of Market Regulation",
				"Why Volunteering Is Declining",
				"Invisible Labor: What Productivity Statistics Miss",
				"How Parents Shape Early Literacy",
				"The Rise of the Measurement Economy",
			},
			CorrectAnswer: "Invisible Labor: What Productivity Statistics Miss",
			Level:         4,
			Source:        "sample",
		},
		{
			ObjectID:      "seed-l5-001",
			Question:      "Choose the order of sentences that best completes the passage.",
			Passage:       "Scientific consensus is often misunderstood as unanimity. (A) Rather, it reflects the convergence of independent lines of evidence evaluated by researchers with competing incentives. (B) That convergence can later shift, but only under the weight of new evidence meeting the same standard. (C) Consensus, in other words, is not a vote but a verdict that remains open to appeal.",
			Choices:       []string{"(A)-(B)-(C)", "(A)-(C)-(B)", "(B)-(A)-(C)", "(B)-(C)-(A)", "(C)-(A)-(B)"},
			CorrectAnswer: "(A)-(B)-(C)",
			Level:         5,
			Source:        "sample",
		},
	}

	if err := index.SaveQuestions(questions); err != nil {
		log.Fatalf("failed to seed question index: %v", err)
	}
	fmt.Printf("Seeded %d sample questions to the search index.\n", len(questions))
}
