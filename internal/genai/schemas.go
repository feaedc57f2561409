package genai

// SubtopicsSchema describes the expected subtopic extraction response.
var SubtopicsSchema = &Schema{
	Name: "subtopics",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subtopics": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"subtopic_name":        map[string]any{"type": "string", "minLength": 1},
						"topic_title":          map[string]any{"type": "string"},
						"academic_class":       map[string]any{"type": "string"},
						"subject":              map[string]any{"type": "string"},
						"learning_objectives":  stringArray(),
						"key_concepts":         stringArray(),
						"assessment_criteria":  stringArray(),
						"suggested_activities": stringArray(),
					},
					"required": []any{"subtopic_name"},
				},
			},
		},
		"required": []any{"subtopics"},
	},
}

// QuestionPlanSchema describes the expected question planning response.
var QuestionPlanSchema = &Schema{
	Name: "question_plan",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"planned_questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question_id":  map[string]any{"type": "string"},
						"topic":        map[string]any{"type": "string"},
						"subtopic":     map[string]any{"type": "string", "minLength": 1},
						"difficulty":   map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
						"concept_area": map[string]any{"type": "string"},
					},
					"required": []any{"subtopic", "difficulty"},
				},
			},
			"total_questions": map[string]any{"type": "integer"},
		},
		"required": []any{"planned_questions"},
	},
}

// QuestionsSchema describes the expected batch generation response.
var QuestionsSchema = &Schema{
	Name: "questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question_id":       map[string]any{"type": "string"},
						"text":              map[string]any{"type": "string", "minLength": 1},
						"topic":             map[string]any{"type": "string"},
						"category":          map[string]any{"type": "string"},
						"academic_class":    map[string]any{"type": "string"},
						"examination_level": map[string]any{"type": "string"},
						"difficulty":        map[string]any{"type": "string"},
						"tags":              stringArray(),
						"choices": map[string]any{
							"type":     "array",
							"minItems": 2,
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"text":       map[string]any{"type": "string"},
									"is_correct": map[string]any{"type": "boolean"},
								},
								"required": []any{"text", "is_correct"},
							},
						},
						"solution": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"explanation": map[string]any{"type": "string"},
								"steps":       stringArray(),
							},
							"required": []any{"explanation"},
						},
						"hint": map[string]any{"type": "string"},
					},
					"required": []any{"text", "choices", "solution"},
				},
			},
		},
		"required": []any{"questions"},
	},
}

func stringArray() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}
