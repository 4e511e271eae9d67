/*
Package hmm implements a profile hidden Markov model specialized for
matching biological sequences against a tandem-repeat pattern: a suffix
sub-model, a repeat sub-model holding multiple copies of a unit profile, and
a prefix sub-model, concatenated and baked into one flat, indexed state
graph.

The package provides the Forward algorithm (log P(seq | model)), a full
Viterbi decoder over the baked model, and a sub-sequence Viterbi decoder
confined to a single repeat unit's band of states.

Model construction, populating States with emission distributions, is a
caller responsibility; this package does not train, validate, or normalize
distributions. See internal/modelio for one way to build a Model from a
YAML description.
*/
package hmm
