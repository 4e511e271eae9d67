// Command vntrhmm loads a tandem-repeat profile-HMM model description and a
// read, then runs one of the core decoders against it: bake (with a sanity
// check), score (Forward), viterbi (full decode), or unit (sub-sequence
// decode confined to a single repeat copy).
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	hmm "github.com/berntpopp/adVNTR"
	"github.com/berntpopp/adVNTR/internal/bioseq"
	"github.com/berntpopp/adVNTR/internal/modelio"
)

var (
	logLevel   string
	passCount  int
	sortByName bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("vntrhmm failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vntrhmm",
		Short: "Decode tandem-repeat reads against a profile-HMM model",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging()
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	root.PersistentFlags().IntVar(&passCount, "pass-count", 2, "relaxation passes over the repeat band per input column")
	root.PersistentFlags().BoolVar(&sortByName, "sort-by-name", false, "bake with name-order topology instead of canonical D/M/I order")

	root.AddCommand(newBakeCmd(), newScoreCmd(), newViterbiCmd(), newUnitCmd())
	return root
}

func configureLogging() error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	return nil
}

func loadAndBake(modelPath string) (*hmm.Model, error) {
	spec, err := modelio.Load(modelPath)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("name", spec.Name).
		Int("repeat_copies", spec.Repeat.Copies).
		Int("unit_length", spec.Repeat.UnitLength).
		Msg("model spec loaded")

	m, err := spec.Build()
	if err != nil {
		return nil, err
	}
	m.PassCount = passCount
	start := time.Now()
	m.Bake(0, sortByName)
	log.Debug().
		Int("states", len(m.States)).
		Dur("bake_time", time.Since(start)).
		Msg("model baked")
	return m, nil
}

func loadRead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open read file: %w", err)
	}
	defer f.Close()
	seq, err := bioseq.ReadFASTA(f)
	if err != nil {
		return nil, err
	}
	return seq.Bytes(), nil
}

func newBakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bake <model.yaml>",
		Short: "Load, concatenate, bake, and sanity-check a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadAndBake(args[0])
			if err != nil {
				return err
			}
			report := m.CheckSanityOfTransitionProb(false)
			if len(report) == 0 {
				log.Info().Msg("model is clean: every state's outgoing transitions sum to 1")
				return nil
			}
			for _, u := range report {
				log.Warn().Msg(u.String())
			}
			return fmt.Errorf("model has %d unbalanced state(s)", len(report))
		},
	}
}

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <model.yaml> <read.fa>",
		Short: "Print log P(read | model) via the Forward algorithm",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadAndBake(args[0])
			if err != nil {
				return err
			}
			seq, err := loadRead(args[1])
			if err != nil {
				return err
			}
			start := time.Now()
			logp, err := m.LogProbability(seq)
			if err != nil {
				return err
			}
			log.Info().Dur("decode_time", time.Since(start)).Float64("logp", logp).Msg("forward complete")
			fmt.Println(logp)
			return nil
		},
	}
}

func newViterbiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "viterbi <model.yaml> <read.fa>",
		Short: "Print the best path and its log-probability via full Viterbi",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadAndBake(args[0])
			if err != nil {
				return err
			}
			seq, err := loadRead(args[1])
			if err != nil {
				return err
			}
			start := time.Now()
			logp, path, err := m.Viterbi(seq)
			if err != nil {
				return err
			}
			log.Info().Dur("decode_time", time.Since(start)).Float64("logp", logp).Msg("viterbi complete")
			fmt.Println(logp)
			fmt.Println(bioseq.PathTrace(pathNames(path)))
			return nil
		},
	}
}

func newUnitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unit <model.yaml> <read.fa> <unit-id>",
		Short: "Decode a single repeat copy's band via sub-sequence Viterbi",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadAndBake(args[0])
			if err != nil {
				return err
			}
			seq, err := loadRead(args[1])
			if err != nil {
				return err
			}
			start := time.Now()
			logp, path, err := m.SubsequenceViterbiScore(seq, args[2])
			if err != nil {
				return err
			}
			log.Info().Dur("decode_time", time.Since(start)).Float64("logp", logp).Msg("subsequence viterbi complete")
			fmt.Println(logp)
			fmt.Println(bioseq.PathTrace(pathNames(path)))
			return nil
		},
	}
}

func pathNames(path hmm.Path) []string {
	names := make([]string, len(path))
	for i, step := range path {
		names[i] = step.State.Name
	}
	return names
}
