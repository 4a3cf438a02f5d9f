package coach

import (
	"fmt"
	"strings"

	"github.com/aithlete/aithlete/internal/models"
)

const planPromptTemplate = `Generate a structured workout plan in JSON format based on these preferences:

Fitness Goal: %s
Fitness Level: %s
Commitment: %s
Workout Types: %s
Available Equipment: %s
Plan Duration: %s

JSON Structure:
The response must be a valid JSON object. Do not include any additional text, formatting, or backticks. The JSON should follow this structure:

{"Day 1": {"exercises": [{"name": "Exercise Name", "duration": "Duration", "instructions": "Instructions"}, ...]}, "Day 2": {"exercises": [...]}, ...}

Each day will have multiple exercises, where:
- "name" is the exercise name.
- "duration" specifies the workout time (e.g., "10 mins", "30 secs").
- "instructions" provide details on execution.
`

const advicePromptTemplate = `You are an AI fitness expert named Aithlete. You provide expert advice on:
- Strength training
- Weight loss
- Muscle gain
- Nutrition and meal planning
- Recovery and stretching
- Workout schedules and routines

Please provide detailed, practical, and **evidence-based** fitness guidance.

User Question: %s
`

// PlanPrompt builds the plan-generation prompt for req.
func PlanPrompt(req models.PlanRequest) string {
	return fmt.Sprintf(planPromptTemplate,
		req.Goal,
		req.Level,
		req.Commitment,
		strings.Join(req.WorkoutTypes, ", "),
		req.Equipment,
		req.Duration,
	)
}

// AdvicePrompt builds the expert-advice prompt for a user question.
func AdvicePrompt(question string) string {
	return fmt.Sprintf(advicePromptTemplate, strings.TrimSpace(question))
}
