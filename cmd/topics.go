package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotcommander/topical/internal/config"
	"github.com/dotcommander/topical/internal/hierarchy"
	"github.com/dotcommander/topical/internal/store"
	"github.com/dotcommander/topical/internal/types"
)

var (
	mapFlag      string
	revFlag      uint64
	topicFlag    string
	parentFlag   string
	titleFlag    string
	descFlag     string
	typeFlag     string
	classFlag    string
	queryFlag    string
	slugHintFlag string
	freshFlag    string
	topicsFlag   []string
	reassignFlag []string
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Manage topical map hierarchies",
	Long: `The topics command group manages topical maps stored in the workspace
database: core and outer topics, their slugs, classifications, and the
structural operations promote, demote, reparent, merge, and classify.

Every mutation takes the map's current revision; pass --rev to require a
specific revision and fail on concurrent modification.`,
}

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List topics in a map",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(db *store.DB, mgr *hierarchy.Manager) error {
			view, err := mgr.View(mapFlag)
			if err != nil {
				return err
			}
			fmt.Printf("%s (revision %d)\n", view.MapID, view.Revision)
			for _, t := range view.Topics {
				marker := ""
				if t.Orphaned {
					marker = " [orphaned]"
				}
				fmt.Printf("%-6s %-14s %-40s %s%s\n", t.Type, t.Class, t.Slug, t.Title, marker)
			}
			return nil
		})
	},
}

var topicsTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show a map as a core/spoke tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(db *store.DB, mgr *hierarchy.Manager) error {
			view, err := mgr.View(mapFlag)
			if err != nil {
				return err
			}
			printTree(view)
			return nil
		})
	},
}

var topicsCreateMapCmd = &cobra.Command{
	Use:   "create-map",
	Short: "Create an empty topical map",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(func(mgr *hierarchy.Manager, rev uint64) (hierarchy.View, error) {
			return mgr.CreateMap(mapFlag)
		})
	},
}

var topicsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(func(mgr *hierarchy.Manager, rev uint64) (hierarchy.View, error) {
			return mgr.CreateTopic(mapFlag, rev, topicInput())
		})
	},
}

var topicsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a topic (child outer topics are flagged orphaned)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(func(mgr *hierarchy.Manager, rev uint64) (hierarchy.View, error) {
			return mgr.DeleteTopic(mapFlag, rev, topicFlag)
		})
	},
}

var topicsPromoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Promote an outer topic to a core topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(func(mgr *hierarchy.Manager, rev uint64) (hierarchy.View, error) {
			return mgr.Promote(mapFlag, rev, topicFlag)
		})
	},
}

var topicsDemoteCmd = &cobra.Command{
	Use:   "demote",
	Short: "Demote a core topic under another core topic",
	Long: `Demote turns a core topic into an outer topic under --parent. If the
topic has children, every child must be reassigned to another core topic
via repeated --reassign child=newParent flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reassign, err := parseReassign(reassignFlag)
		if err != nil {
			return err
		}
		return mutate(func(mgr *hierarchy.Manager, rev uint64) (hierarchy.View, error) {
			return mgr.Demote(mapFlag, rev, topicFlag, parentFlag, reassign)
		})
	},
}

var topicsReparentCmd = &cobra.Command{
	Use:   "reparent",
	Short: "Move an outer topic under a different core topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(func(mgr *hierarchy.Manager, rev uint64) (hierarchy.View, error) {
			return mgr.Reparent(mapFlag, rev, topicFlag, parentFlag)
		})
	},
}

var topicsMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge two or more topics into a new topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(func(mgr *hierarchy.Manager, rev uint64) (hierarchy.View, error) {
			return mgr.Merge(mapFlag, rev, topicsFlag, topicInput())
		})
	},
}

var topicsClassifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Set a topic's monetization class",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(func(mgr *hierarchy.Manager, rev uint64) (hierarchy.View, error) {
			return mgr.Classify(mapFlag, rev, topicFlag, classFlag)
		})
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)

	topicsCmd.PersistentFlags().StringVarP(&mapFlag, "map", "m", "", "Map ID")
	topicsCmd.PersistentFlags().Uint64Var(&revFlag, "rev", 0, "Expected map revision (0 = current)")
	topicsCmd.MarkPersistentFlagRequired("map")

	for _, c := range []*cobra.Command{topicsCreateCmd, topicsMergeCmd} {
		c.Flags().StringVar(&titleFlag, "title", "", "Topic title")
		c.Flags().StringVar(&descFlag, "description", "", "Topic description")
		c.Flags().StringVar(&typeFlag, "type", types.TopicOuter, "Topic type (core|outer)")
		c.Flags().StringVar(&classFlag, "class", types.ClassInformational, "Monetization class (monetization|informational)")
		c.Flags().StringVar(&parentFlag, "parent", "", "Parent core topic ID")
		c.Flags().StringVar(&queryFlag, "query", "", "Canonical query")
		c.Flags().StringVar(&slugHintFlag, "slug-hint", "", "URL slug hint")
		c.Flags().StringVar(&freshFlag, "freshness", types.FreshnessStandard, "Freshness (evergreen|standard)")
		c.MarkFlagRequired("title")
	}
	topicsMergeCmd.Flags().StringSliceVar(&topicsFlag, "topics", nil, "IDs of topics to merge (two or more)")
	topicsMergeCmd.MarkFlagRequired("topics")

	topicsDeleteCmd.Flags().StringVar(&topicFlag, "topic", "", "Topic ID")
	topicsDeleteCmd.MarkFlagRequired("topic")
	topicsPromoteCmd.Flags().StringVar(&topicFlag, "topic", "", "Topic ID")
	topicsPromoteCmd.MarkFlagRequired("topic")

	topicsDemoteCmd.Flags().StringVar(&topicFlag, "topic", "", "Topic ID")
	topicsDemoteCmd.Flags().StringVar(&parentFlag, "parent", "", "New parent core topic ID")
	topicsDemoteCmd.Flags().StringSliceVar(&reassignFlag, "reassign", nil, "child=newParent reassignments for the topic's children")
	topicsDemoteCmd.MarkFlagRequired("topic")
	topicsDemoteCmd.MarkFlagRequired("parent")

	topicsReparentCmd.Flags().StringVar(&topicFlag, "topic", "", "Topic ID")
	topicsReparentCmd.Flags().StringVar(&parentFlag, "parent", "", "New parent core topic ID")
	topicsReparentCmd.MarkFlagRequired("topic")
	topicsReparentCmd.MarkFlagRequired("parent")

	topicsClassifyCmd.Flags().StringVar(&topicFlag, "topic", "", "Topic ID")
	topicsClassifyCmd.Flags().StringVar(&classFlag, "class", "", "Monetization class (monetization|informational)")
	topicsClassifyCmd.MarkFlagRequired("topic")
	topicsClassifyCmd.MarkFlagRequired("class")

	topicsCmd.AddCommand(topicsListCmd, topicsTreeCmd, topicsCreateMapCmd,
		topicsCreateCmd, topicsDeleteCmd, topicsPromoteCmd, topicsDemoteCmd,
		topicsReparentCmd, topicsMergeCmd, topicsClassifyCmd)
}

// withStore opens the workspace database, rebuilds the manager, and runs fn.
func withStore(fn func(db *store.DB, mgr *hierarchy.Manager) error) error {
	cfg, err := config.LoadConfig(rootPath)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	path := cfg.Store.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Root, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating store directory: %w", err)
	}
	db, err := store.OpenDB(path)
	if err != nil {
		return fmt.Errorf("error opening store: %w", err)
	}
	defer db.Close()

	mgr, err := db.LoadManager()
	if err != nil {
		return fmt.Errorf("error loading topic maps: %w", err)
	}
	return fn(db, mgr)
}

// mutate runs one structural mutation and persists the resulting view.
// When --rev is 0 the map's current revision is used.
func mutate(fn func(mgr *hierarchy.Manager, rev uint64) (hierarchy.View, error)) error {
	return withStore(func(db *store.DB, mgr *hierarchy.Manager) error {
		rev := revFlag
		if rev == 0 {
			if view, err := mgr.View(mapFlag); err == nil {
				rev = view.Revision
			}
		}
		view, err := fn(mgr, rev)
		if err != nil {
			return err
		}
		if err := db.SaveView(view); err != nil {
			return fmt.Errorf("error saving map: %w", err)
		}
		if !quiet {
			fmt.Printf("%s now at revision %d (%d topics)\n", view.MapID, view.Revision, len(view.Topics))
			for _, id := range view.OrphanedTopicIDs {
				fmt.Printf("  orphaned: %s\n", id)
			}
		}
		return nil
	})
}

func topicInput() hierarchy.TopicInput {
	return hierarchy.TopicInput{
		Title:          titleFlag,
		Description:    descFlag,
		Type:           typeFlag,
		Class:          classFlag,
		ParentID:       parentFlag,
		CanonicalQuery: queryFlag,
		URLSlugHint:    slugHintFlag,
		Freshness:      freshFlag,
	}
}

func parseReassign(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		child, parent, ok := strings.Cut(pair, "=")
		if !ok || child == "" || parent == "" {
			return nil, fmt.Errorf("invalid --reassign %q: want child=newParent", pair)
		}
		out[child] = parent
	}
	return out, nil
}

// printTree renders cores with their spokes indented, then standalone topics.
func printTree(view hierarchy.View) {
	children := make(map[string][]hierarchy.Topic)
	var cores, standalone []hierarchy.Topic
	for _, t := range view.Topics {
		switch {
		case t.IsCore():
			cores = append(cores, t)
		case t.ParentID == "":
			standalone = append(standalone, t)
		default:
			children[t.ParentID] = append(children[t.ParentID], t)
		}
	}
	sort.Slice(cores, func(i, j int) bool { return cores[i].Slug < cores[j].Slug })

	fmt.Printf("%s (revision %d)\n", view.MapID, view.Revision)
	for _, core := range cores {
		fmt.Printf("%s [%s]\n", core.Slug, core.Class)
		spokes := children[core.ID]
		sort.Slice(spokes, func(i, j int) bool { return spokes[i].Slug < spokes[j].Slug })
		for _, spoke := range spokes {
			marker := ""
			if spoke.Orphaned {
				marker = " [orphaned]"
			}
			fmt.Printf("  %s%s\n", spoke.Slug, marker)
		}
	}
	for _, t := range standalone {
		marker := ""
		if t.Orphaned {
			marker = " [orphaned]"
		}
		fmt.Printf("%s (standalone)%s\n", t.Slug, marker)
	}
}
