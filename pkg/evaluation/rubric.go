// Package evaluation scores completed agent outputs. Scores are advisory and
// never stop a workflow.
package evaluation

// Criterion is one dimension an output is scored on.
type Criterion struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// Rubric describes how to score one kind of agent output.
type Rubric struct {
	Task     string      `json:"task"`
	Criteria []Criterion `json:"criteria"`
}

const (
	CriterionRelevance   = "relevance"
	CriterionFidelity    = "fidelity"
	CriterionInstruction = "instruction_compliance"
)

func relevance(weight float64, description string) Criterion {
	return Criterion{Name: CriterionRelevance, Description: description, Weight: weight}
}

func fidelity(weight float64, description string) Criterion {
	return Criterion{Name: CriterionFidelity, Description: description, Weight: weight}
}

func compliance(weight float64, description string) Criterion {
	return Criterion{Name: CriterionInstruction, Description: description, Weight: weight}
}

// Rubrics holds the default rubric for each agent, keyed by agent name.
var Rubrics = map[string]Rubric{
	"instruction-capture": {
		Task: "Extract the user's tailoring intent and explicit constraints from free-form instructions",
		Criteria: []Criterion{
			relevance(0.3, "The intent reflects what the user asked for"),
			fidelity(0.4, "No constraint is invented that the user did not state"),
			compliance(0.3, "Every explicit constraint in the instructions is captured"),
		},
	},
	"profile-structuring": {
		Task: "Structure and normalize the candidate's resume profile",
		Criteria: []Criterion{
			relevance(0.2, "Sections hold the right kind of content"),
			fidelity(0.6, "Every fact comes from the source resume and none is lost"),
			compliance(0.2, "Technology names are normalized consistently"),
		},
	},
	"job-analysis": {
		Task: "Extract required skills, preferred skills, responsibilities and ATS keywords from a job description",
		Criteria: []Criterion{
			relevance(0.4, "Extracted skills and keywords are the ones the posting emphasizes"),
			fidelity(0.4, "Nothing is extracted that the posting does not mention"),
			compliance(0.2, "Required and preferred skills are separated correctly"),
		},
	},
	"content-rewrite": {
		Task: "Rewrite resume content to target the job while following the user's instructions",
		Criteria: []Criterion{
			relevance(0.35, "Rewritten content emphasizes the job's priority skills"),
			fidelity(0.4, "No achievement, employer, date or metric is fabricated"),
			compliance(0.25, "The user's intent and constraints are followed"),
		},
	},
	"assembly": {
		Task: "Assemble the final tailored resume and summarize what changed",
		Criteria: []Criterion{
			relevance(0.3, "Sections and skills are ordered for the target job"),
			fidelity(0.5, "The assembled resume matches the rewritten content"),
			compliance(0.2, "The tailoring notes describe the applied changes accurately"),
		},
	},
}

// RubricFor returns the rubric registered for agent, or a generic one.
func RubricFor(agent string) Rubric {
	if rubric, ok := Rubrics[agent]; ok {
		return rubric
	}

	return Rubric{
		Task: "Produce a correct output for the " + agent + " step",
		Criteria: []Criterion{
			relevance(0.4, "The output addresses the task"),
			fidelity(0.4, "The output is faithful to its input"),
			compliance(0.2, "The output follows the user's instructions"),
		},
	}
}
