// Package hygiene scores the digital hygiene questionnaire.
//
// A Bank holds the questions grouped by category. A Scorer turns the
// answers of one submission into a model.HygieneScore: a 0-100 score per
// answered category, the overall mean, and the strength and weakness
// narratives that the recommendation engine works from. Categories without
// any answer are left out of the mean instead of counting as zero.
//
// The default question bank is embedded in the binary; LoadBankFile
// replaces it with an external JSON file of the same shape.
package hygiene
