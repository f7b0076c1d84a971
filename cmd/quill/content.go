package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openpress/quill/internal/api"
)

func argID(args []string) (int, error) {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func newArticlesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "Browse and manage articles",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List articles, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			articles, err := a.session.Client().ListArticles(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(articles)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args)
			if err != nil {
				return err
			}
			art, err := a.session.Client().GetArticle(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(art)
		},
	})

	var title, content string
	var category int
	var tags []int
	create := &cobra.Command{
		Use:   "create",
		Short: "Publish an article",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Initialize(cmd.Context())
			art, err := a.session.Client().CreateArticle(cmd.Context(), api.ArticleInput{
				Title:    title,
				Content:  content,
				Category: category,
				Tags:     tags,
			})
			if err != nil {
				return err
			}
			return printJSON(art)
		},
	}
	create.Flags().StringVar(&title, "title", "", "article title")
	create.Flags().StringVar(&content, "content", "", "article body")
	create.Flags().IntVar(&category, "category", 0, "category id")
	create.Flags().IntSliceVar(&tags, "tags", nil, "tag ids")
	create.MarkFlagRequired("title")
	create.MarkFlagRequired("content")
	create.MarkFlagRequired("category")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Initialize(cmd.Context())
			id, err := argID(args)
			if err != nil {
				return err
			}
			if err := a.session.Client().DeleteArticle(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("Deleted")
			return nil
		},
	})

	return cmd
}

func newCategoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Browse and manage categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := a.session.Client().ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cats)
		},
	})

	var name, description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Initialize(cmd.Context())
			cat, err := a.session.Client().CreateCategory(cmd.Context(), api.Category{
				Name:        name,
				Description: description,
			})
			if err != nil {
				return err
			}
			return printJSON(cat)
		},
	}
	create.Flags().StringVar(&name, "name", "", "category name")
	create.Flags().StringVar(&description, "description", "", "category description")
	create.MarkFlagRequired("name")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Initialize(cmd.Context())
			id, err := argID(args)
			if err != nil {
				return err
			}
			if err := a.session.Client().DeleteCategory(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("Deleted")
			return nil
		},
	})

	return cmd
}

func newTagsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Browse and manage tags",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := a.session.Client().ListTags(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(tags)
		},
	})

	var name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Initialize(cmd.Context())
			tag, err := a.session.Client().CreateTag(cmd.Context(), api.Tag{TagName: name})
			if err != nil {
				return err
			}
			return printJSON(tag)
		},
	}
	create.Flags().StringVar(&name, "name", "", "tag name")
	create.MarkFlagRequired("name")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Initialize(cmd.Context())
			id, err := argID(args)
			if err != nil {
				return err
			}
			if err := a.session.Client().DeleteTag(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("Deleted")
			return nil
		},
	})

	return cmd
}

func newCommentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Browse and manage comments",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List comments, threaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			comments, err := a.session.Client().ListComments(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(comments)
		},
	})

	var article, parent int
	var content string
	create := &cobra.Command{
		Use:   "create",
		Short: "Post a comment, optionally as a reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Initialize(cmd.Context())
			in := api.CommentInput{Article: article, Content: content}
			if cmd.Flags().Changed("parent") {
				in.Parent = &parent
			}
			comment, err := a.session.Client().CreateComment(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(comment)
		},
	}
	create.Flags().IntVar(&article, "article", 0, "article id")
	create.Flags().StringVar(&content, "content", "", "comment text")
	create.Flags().IntVar(&parent, "parent", 0, "parent comment id for replies")
	create.MarkFlagRequired("article")
	create.MarkFlagRequired("content")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Initialize(cmd.Context())
			id, err := argID(args)
			if err != nil {
				return err
			}
			if err := a.session.Client().DeleteComment(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("Deleted")
			return nil
		},
	})

	return cmd
}
