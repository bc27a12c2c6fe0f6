package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/engine"
	"github.com/abhisek/qbank/internal/planner"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/store"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Select a quiz from the corpus",
	Long: "Runs one selection against the corpus under the given facet filters and " +
		"constraints. With --history, questions served by earlier runs are excluded " +
		"and this run's selection is recorded.",
	RunE: runQuiz,
}

func init() {
	quizCmd.Flags().String("category", "", "Filter by category")
	quizCmd.Flags().String("difficulty", "", "Filter by difficulty tier")
	quizCmd.Flags().String("type", "", "Filter by question type")
	quizCmd.Flags().StringSlice("tags", nil, "Filter by tags (any-of)")
	quizCmd.Flags().Int("count", 5, "Number of questions to select")
	quizCmd.Flags().Int("time-budget", 0, "Time budget in minutes (0 = unlimited)")
	quizCmd.Flags().Int64("seed", 0, "Deterministic sampling seed")
	quizCmd.Flags().String("mix", "", "Difficulty mix, e.g. beginner=0.5,senior=0.5")
	quizCmd.Flags().Bool("history", false, "Exclude previously served questions and record this run")
	quizCmd.Flags().Bool("answers", false, "Print answers alongside questions")
}

func runQuiz(cmd *cobra.Command, args []string) error {
	corpus, err := loadCorpus(cmd)
	if err != nil {
		return err
	}
	eng := engine.New(corpus)
	sessionID := eng.StartSession()

	useHistory, _ := cmd.Flags().GetBool("history")
	var st *store.Store
	if useHistory {
		st, err = openHistory(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		served, err := st.ServedIDs(cmd.Context())
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		for _, id := range served {
			if err := eng.Skip(sessionID, id); err != nil {
				return fmt.Errorf("apply history: %w", err)
			}
		}
	}

	req, err := quizRequest(cmd)
	if err != nil {
		return err
	}

	result, err := eng.SelectQuestions(cmd.Context(), sessionID, req)
	if err != nil {
		if len(result.UnmetConstraints) > 0 {
			return fmt.Errorf("no matching questions (unmet: %s): %w",
				strings.Join(result.UnmetConstraints, ", "), err)
		}
		return err
	}

	questions, err := eng.Questions(result.IDs)
	if err != nil {
		return err
	}

	showAnswers, _ := cmd.Flags().GetBool("answers")
	printQuiz(questions, showAnswers)

	if result.Status == planner.StatusPartial {
		fmt.Printf("\npartial result: %d of %d requested\n", len(result.IDs), req.Count)
	}
	for _, u := range result.UnmetConstraints {
		fmt.Printf("unmet filter: %s\n", u)
	}

	if st != nil {
		if err := recordHistory(cmd.Context(), st, sessionID, questions); err != nil {
			return fmt.Errorf("record history: %w", err)
		}
	}
	return nil
}

func quizRequest(cmd *cobra.Command) (engine.QueryRequest, error) {
	category, _ := cmd.Flags().GetString("category")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	qtype, _ := cmd.Flags().GetString("type")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	count, _ := cmd.Flags().GetInt("count")
	budget, _ := cmd.Flags().GetInt("time-budget")
	mixSpec, _ := cmd.Flags().GetString("mix")

	if difficulty != "" {
		if _, ok := question.ParseDifficulty(difficulty); !ok {
			return engine.QueryRequest{}, fmt.Errorf("unknown difficulty %q (known: %s)",
				difficulty, strings.Join(question.DifficultyNames(), ", "))
		}
	}

	mix, err := parseMixSpec(mixSpec)
	if err != nil {
		return engine.QueryRequest{}, err
	}

	req := engine.QueryRequest{
		Category:      category,
		Difficulty:    difficulty,
		Type:          qtype,
		Tags:          tags,
		Count:         count,
		TimeBudget:    budget,
		DifficultyMix: mix,
	}
	if cmd.Flags().Changed("seed") {
		req.Seed, _ = cmd.Flags().GetInt64("seed")
		req.HasSeed = true
	}
	return req, nil
}

// parseMixSpec parses "beginner=0.5,senior=0.5" into a difficulty mix.
func parseMixSpec(spec string) (map[question.Difficulty]float64, error) {
	if spec == "" {
		return nil, nil
	}
	mix := make(map[question.Difficulty]float64)
	for _, part := range strings.Split(spec, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid mix entry %q: want tier=weight", part)
		}
		tier, ok := question.ParseDifficulty(kv[0])
		if !ok {
			return nil, fmt.Errorf("unknown difficulty %q in mix", kv[0])
		}
		w, err := strconv.ParseFloat(kv[1], 64)
		if err != nil || w < 0 {
			return nil, fmt.Errorf("invalid weight %q for tier %s", kv[1], kv[0])
		}
		mix[tier] = w
	}
	return mix, nil
}

func printQuiz(questions []question.Question, showAnswers bool) {
	totalMinutes := 0
	for i, q := range questions {
		fmt.Printf("%d. [%s | %s | %dm] %s\n", i+1, q.Category, q.Difficulty, q.TimeEstimate, q.Text)
		if q.Format == question.FormatMultipleChoice {
			for _, o := range q.Options {
				marker := " "
				if showAnswers && o.IsCorrect {
					marker = "*"
				}
				fmt.Printf("   %s %s) %s\n", marker, o.ID, o.Text)
			}
		}
		if showAnswers && q.Format == question.FormatEssay {
			fmt.Printf("   answer: %s\n", q.Answer)
		}
		totalMinutes += q.TimeEstimate
	}
	fmt.Printf("\n%d questions, ~%d minutes\n", len(questions), totalMinutes)
}

// openHistory opens the session-history database from --db / QBANK_DB / the
// default XDG path.
func openHistory(cmd *cobra.Command) (*store.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve history path: %w", err)
		}
	} else if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return store.Open(path)
}

func recordHistory(ctx context.Context, st *store.Store, sessionID string, questions []question.Question) error {
	if err := st.StartSession(ctx, sessionID, time.Now()); err != nil {
		return err
	}
	ids := make([]string, 0, len(questions))
	minutes := make(map[string]int, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
		minutes[q.ID] = q.TimeEstimate
	}
	if err := st.RecordServed(ctx, sessionID, ids, minutes); err != nil {
		return err
	}
	return st.EndSession(ctx, sessionID, time.Now())
}
