// Package recommend turns a hygiene score into a complete hygiene report.
//
// The Engine assigns a risk tier, derives rule-based recommendations from
// the weaknesses and the weak categories, optionally merges the advice of an
// LLM collaborator, and finishes with a three-horizon action plan and a
// templated summary. It never fails: whatever goes wrong with the
// collaborator, the rule-based advice stands, and a fixed fallback set
// guarantees the report always has something to act on.
package recommend
