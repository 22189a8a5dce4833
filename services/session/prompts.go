package session

import "github.com/tmc/langchaingo/llms"

const (
	openingQuestionPrompt = `A learner named %s is starting a tutoring session on this chapter. Ask one friendly, open-ended warm-up question at easy difficulty, based on the chapter material below. Respond with the question only.

Chapter material:
%s`

	evaluationPrompt = `The learner was asked:
%s

The learner answered:
%s

Evaluate the answer against the chapter material below. Be encouraging and tolerant of imprecise phrasing; partial understanding counts as correct. Pick the next difficulty (easy, medium or hard) based on how the learner is doing, and write the next question at that difficulty. Call evaluate_answer.

Chapter material:
%s`

	reconciliationSystemPrompt = `You reconstruct structured quiz results from a raw spoken tutoring transcript. The transcript tags assistant and learner turns, but speech overlaps: the assistant may be interrupted mid-question, learner answers may be transcribed after the next question has started, and words may be phonetically garbled.

Rules:
1. Identify every question the assistant asked (fragments ending in a question mark). If a question was cut off, reconstruct the full intended question, preferring the closest question from the expected question bank.
2. Identify learner answers by their answer markers in the transcript.
3. Pair each answer with the question that most recently preceded it in conversational time, even if the answer's marker appears after the next question has started.
4. Score each pair against the chapter content. Be tolerant of transcription noise and a child's imprecise phrasing: partial credit counts as correct. An explicit "I don't know" is incorrect.

Call report_reconciliation with every reconstructed pair in conversational order.`

	reconciliationPrompt = `Expected question bank:
%s

Transcript:
%s`

	dynamicAssessmentPrompt = `Generate %d fresh assessment questions for this chapter, mixing easy, medium and hard difficulties. Each question needs a reference answer and a difficulty tag. Call publish_questions.
%s
Chapter material:
%s`

	simplifiedAssessmentPrompt = `Write %d simple quiz questions with reference answers and easy/medium/hard difficulty tags for this chapter. Call publish_questions.

Chapter material:
%s`

	handwrittenGradingPrompt = `This image shows a learner's handwritten answer sheet. The questions they were answering are listed below. Read each handwritten answer, pair it with its question, and score it. Handwriting is a child's: tolerate spelling mistakes and imprecise phrasing, and count partial understanding as correct. Call report_grading with every pair.

Questions:
%s`

	fallbackFeedback     = "Thanks for your answer. Let's keep going and come back to this one later."
	fallbackNextQuestion = "Can you tell me one more thing you remember from this chapter?"
	fallbackOpening      = "To get us started, what is this chapter about in your own words?"
)

var evaluateAnswerTools = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "evaluate_answer",
			Description: "Record the evaluation of the learner's answer and the next question to ask",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"correct": map[string]any{
						"type":        "boolean",
						"description": "Whether the learner's answer is correct (partial credit counts as correct)",
					},
					"feedback": map[string]any{
						"type":        "string",
						"description": "Short, encouraging feedback explaining the evaluation",
					},
					"next_difficulty": map[string]any{
						"type":        "string",
						"description": "Difficulty for the next question",
						"enum":        []string{"easy", "medium", "hard"},
					},
					"next_question": map[string]any{
						"type":        "string",
						"description": "The next question to ask, at the chosen difficulty",
					},
				},
				"required": []string{"correct", "feedback", "next_difficulty", "next_question"},
			},
		},
	},
}

var qaPairSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question": map[string]any{
			"type":        "string",
			"description": "The full question text",
		},
		"answer": map[string]any{
			"type":        "string",
			"description": "The learner's answer",
		},
		"correct": map[string]any{
			"type":        "boolean",
			"description": "Whether the answer is correct",
		},
		"feedback": map[string]any{
			"type":        "string",
			"description": "Brief justification of the score",
		},
	},
	"required": []string{"question", "answer", "correct"},
}

var reconcileTools = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "report_reconciliation",
			Description: "Report the reconstructed question/answer pairs from the transcript in conversational order",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"pairs": map[string]any{
						"type":        "array",
						"description": "The reconstructed, scored question/answer pairs",
						"items":       qaPairSchema,
					},
				},
				"required": []string{"pairs"},
			},
		},
	},
}

var gradeHandwrittenTools = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "report_grading",
			Description: "Report the graded question/answer pairs read from the handwritten sheet",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"pairs": map[string]any{
						"type":        "array",
						"description": "The graded question/answer pairs",
						"items":       qaPairSchema,
					},
				},
				"required": []string{"pairs"},
			},
		},
	},
}

var publishQuestionsTools = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "publish_questions",
			Description: "Publish the generated assessment questions",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"questions": map[string]any{
						"type":        "array",
						"description": "The generated questions",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"question": map[string]any{
									"type":        "string",
									"description": "The question text",
								},
								"answer": map[string]any{
									"type":        "string",
									"description": "The reference answer",
								},
								"difficulty": map[string]any{
									"type":        "string",
									"description": "One of easy, medium, hard",
									"enum":        []string{"easy", "medium", "hard"},
								},
							},
							"required": []string{"question", "answer", "difficulty"},
						},
					},
				},
				"required": []string{"questions"},
			},
		},
	},
}
