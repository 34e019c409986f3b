package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

var (
	collectionName         string
	collectionDescription  string
	collectionScope        string
	collectionOwner        string
	collectionLibrary      string
	collectionTriggers     []string
	collectionAlwaysActive bool

	collectionListCharacter string
	collectionListSession   string
	collectionListLibraries []string
)

var collectionCmd = &cobra.Command{
	Use:     "collection",
	Aliases: []string{"collections"},
	Short:   "Manage lore collections",
	Long: `Create, inspect and delete collections of lore chunks.

Collections are global, or owned by a character or a chat session.
Triggers and always-active control when a collection takes part in
retrieval.`,
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create [id]",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionCreate,
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List visible collections",
	Long: `Lists collections visible from the given character and session.
Without flags only global collections are shown.`,
	RunE: runCollectionList,
}

var collectionShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a collection and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionShow,
}

var collectionDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a collection, its chunks and its vector index",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionDelete,
}

func init() {
	f := collectionCreateCmd.Flags()
	f.StringVar(&collectionName, "name", "", "display name (defaults to the ID)")
	f.StringVar(&collectionDescription, "description", "", "description")
	f.StringVar(&collectionScope, "scope", string(domain.ScopeGlobal), "scope: global, character or session")
	f.StringVar(&collectionOwner, "owner", "", "character or session ID for scoped collections")
	f.StringVar(&collectionLibrary, "library", "", "library the collection belongs to")
	f.StringSliceVar(&collectionTriggers, "trigger", nil, "activation trigger (repeatable)")
	f.BoolVar(&collectionAlwaysActive, "always-active", false, "activate for every query")

	lf := collectionListCmd.Flags()
	lf.StringVar(&collectionListCharacter, "character", "", "include collections of this character")
	lf.StringVar(&collectionListSession, "session", "", "include collections of this session")
	lf.StringSliceVar(&collectionListLibraries, "library", nil, "restrict to these libraries")

	collectionCmd.AddCommand(collectionCreateCmd)
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionShowCmd)
	collectionCmd.AddCommand(collectionDeleteCmd)
	rootCmd.AddCommand(collectionCmd)
}

func runCollectionCreate(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	id := args[0]
	name := collectionName
	if name == "" {
		name = id
	}

	coll := domain.NewCollection(id, name)
	coll.Description = collectionDescription
	coll.Scope = domain.Scope{
		Kind:  domain.ScopeKind(strings.ToLower(collectionScope)),
		Owner: collectionOwner,
	}
	coll.Library = collectionLibrary
	coll.ActivationTriggers = collectionTriggers
	coll.AlwaysActive = collectionAlwaysActive

	if err := collectionService.Create(cmd.Context(), coll); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	cmd.Printf("Collection %s created (%s).\n", id, coll.Scope.Key())
	return nil
}

func runCollectionList(cmd *cobra.Command, _ []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	scope := domain.ScopeContext{
		CharacterID: collectionListCharacter,
		SessionID:   collectionListSession,
		Libraries:   collectionListLibraries,
	}

	colls, err := collectionService.List(cmd.Context(), scope)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if len(colls) == 0 {
		cmd.Println("No collections found.")
		return nil
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.Title.Render("Collections:"))
	for i := range colls {
		c := &colls[i]
		line := fmt.Sprintf("  %s  %s  [%s]", c.ID, c.Name, c.Scope.Key())
		if c.Library != "" {
			line += "  library=" + c.Library
		}
		if c.AlwaysActive {
			line += "  " + st.Success.Render("always-active")
		}
		cmd.Println(line)
	}
	return nil
}

func runCollectionShow(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	coll, err := collectionService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get collection: %w", err)
	}

	st := stylesFor(cmd.OutOrStdout())

	cmd.Println(st.Title.Render(coll.Name))
	cmd.Printf("  ID:       %s\n", coll.ID)
	if coll.Description != "" {
		cmd.Printf("  About:    %s\n", coll.Description)
	}
	cmd.Printf("  Scope:    %s\n", coll.Scope.Key())
	if coll.Library != "" {
		cmd.Printf("  Library:  %s\n", coll.Library)
	}
	switch {
	case coll.AlwaysActive:
		cmd.Printf("  Triggers: always active\n")
	case len(coll.ActivationTriggers) > 0:
		cmd.Printf("  Triggers: %s\n", strings.Join(coll.ActivationTriggers, ", "))
	}
	if coll.Conditions != nil && !coll.Conditions.IsEmpty() {
		cmd.Printf("  Conditions: %d (%s)\n", len(coll.Conditions.Rules), coll.Conditions.Logic)
	}
	cmd.Printf("  Chunks:   %s\n", humanize.Comma(int64(coll.ChunkCount())))
	cmd.Println()

	for _, h := range coll.Hashes() {
		c := coll.Chunks[h]
		label := c.Section
		if label == "" {
			label = snippet(c.Text, 40)
		}
		line := fmt.Sprintf("  #%d  %s", h, label)
		if c.Disabled {
			line += " " + st.Muted.Render("(disabled)")
		}
		cmd.Println(line)
		if kws := c.ActiveKeywords(); len(kws) > 0 {
			cmd.Printf("      %s\n", st.Muted.Render("keywords: "+strings.Join(kws, ", ")))
		}
		for _, l := range c.ChunkLinks {
			cmd.Printf("      %s\n", st.Muted.Render(fmt.Sprintf("links to #%d (%s)", l.TargetHash, l.Mode)))
		}
	}
	return nil
}

func runCollectionDelete(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	if err := collectionService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	cmd.Printf("Collection %s deleted.\n", args[0])
	return nil
}
