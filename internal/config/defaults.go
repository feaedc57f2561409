package config

// DefaultSubtopicTemplate returns the default template for subtopic
// extraction.
func DefaultSubtopicTemplate() string {
	return `You are an educational content analyzer. I'm going to provide you with {{.Subject}} syllabus content, and I need you to extract subtopics along with their learning objectives and other metadata.

Here's the syllabus content for the topic:
{{.TopicJSON}}

Analyze this content and identify distinct subtopics. For the topic title, prefer the theme/topic table over the supplied one.

Return ONLY a valid JSON object (no markdown, no additional text) with this structure:
{
  "subtopics": [
    {
      "subtopic_name": "...",
      "topic_title": "...",
      "academic_class": "...",
      "subject": "{{.Subject}}",
      "learning_objectives": ["..."],
      "key_concepts": ["..."],
      "assessment_criteria": ["..."],
      "suggested_activities": ["..."]
    }
  ]
}`
}

// DefaultPlanningTemplate returns the default template for question planning.
func DefaultPlanningTemplate() string {
	return `You are an educational assessment planner. I'm going to provide you with a set of {{.Subject}} subtopics, and I need you to create a systematic plan for generating questions that cover these subtopics.

Here are the subtopics to cover:
{{.SubtopicsJSON}}

For each subtopic, create planned questions with the following considerations:
1. Balance easy, medium, and hard difficulty levels
2. Ensure coverage of all key concepts and learning objectives
3. Include at least 9 questions for each subtopic, with the option to add more if needed for comprehensive coverage
4. Assign unique IDs to each planned question
5. Include a brief concept_area field describing what specific concept the question will test

Return ONLY a valid JSON object (no markdown, no additional text) with this structure:
{
  "planned_questions": [
    {
      "question_id": "...",
      "topic": "...",
      "subtopic": "...",
      "difficulty": "easy|medium|hard",
      "concept_area": "..."
    }
  ],
  "total_questions": 0
}`
}

// DefaultGenerationTemplate returns the default template for batch question
// generation.
func DefaultGenerationTemplate() string {
	return `Generate multiple-choice {{.Subject}} questions for {{.AcademicClass}} students based on the following planned questions.

Subtopic: "{{.SubtopicName}}" within the main topic "{{.TopicTitle}}"

Here's information about this subtopic:
Learning objectives: {{.LearningObjectives}}
Key concepts: {{.KeyConcepts}}
Assessment criteria: {{.AssessmentCriteria}}

Now, generate questions according to this specific plan:
{{.PlannedQuestionsJSON}}

For each question:
1. Include four answer choices (one correct, three incorrect)
2. Provide a detailed explanation for the correct answer, with worked steps
3. Include a helpful hint
4. Match the difficulty level exactly as specified in the plan
5. Address the specific concept area indicated in the plan
6. Use the exact same question_id as provided in the plan

Generate exactly {{.BatchSize}} questions matching the specifications in the plan.

Return ONLY a valid JSON object (no markdown, no additional text) with this structure:
{
  "questions": [
    {
      "question_id": "...",
      "text": "...",
      "topic": "...",
      "category": "...",
      "academic_class": "...",
      "examination_level": "...",
      "difficulty": "...",
      "tags": ["..."],
      "choices": [{"text": "...", "is_correct": true}],
      "solution": {"explanation": "...", "steps": ["..."]},
      "hint": "..."
    }
  ]
}`
}
