package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/wolfman30/fbgraph/pkg/graph"
	"github.com/wolfman30/fbgraph/pkg/messenger"
)

func (c *cli) objectCommand() *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "object <id>",
		Short: "Read a node, e.g. me",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parseParams(params)
			if err != nil {
				return err
			}
			api, err := c.userAPI()
			if err != nil {
				return err
			}
			res, err := api.GetObject(cmd.Context(), args[0], extra)
			if err != nil {
				return err
			}
			return c.printJSON(res)
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "extra query parameter key=value (repeatable)")
	return cmd
}

func (c *cli) connectionsCommand() *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "connections <id> <connection>",
		Short: "Read an edge such as friends or feed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parseParams(params)
			if err != nil {
				return err
			}
			api, err := c.userAPI()
			if err != nil {
				return err
			}
			res, err := api.GetConnections(cmd.Context(), args[0], args[1], extra)
			if err != nil {
				return err
			}
			return c.printJSON(res)
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "extra query parameter key=value (repeatable)")
	return cmd
}

func (c *cli) publishCommand() *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "publish <id> <connection>",
		Short: "Post to an edge, e.g. publish me feed -p message=hello",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parseParams(params)
			if err != nil {
				return err
			}
			api, err := c.userAPI()
			if err != nil {
				return err
			}
			res, err := api.Publish(cmd.Context(), args[0], args[1], extra)
			if err != nil {
				return err
			}
			return c.printJSON(res)
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "field to publish key=value (repeatable)")
	return cmd
}

func (c *cli) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.userAPI()
			if err != nil {
				return err
			}
			res, err := api.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printJSON(res)
		},
	}
}

func (c *cli) appTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "app-token",
		Short: "Mint an app access token from FB_APP_ID and FB_APP_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.appAPI()
			if err != nil {
				return err
			}
			token, err := api.AccessToken(cmd.Context())
			if err != nil {
				return err
			}
			return c.printJSON(map[string]string{"access_token": token})
		},
	}
}

func (c *cli) analyticsCommand() *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "analytics [metric]",
		Short: "Read app insights, optionally one metric",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parseParams(params)
			if err != nil {
				return err
			}
			api, err := c.appAPI()
			if err != nil {
				return err
			}
			metric := ""
			if len(args) == 1 {
				metric = args[0]
			}
			res, err := api.Analytics(cmd.Context(), metric, extra)
			if err != nil {
				return err
			}
			return c.printJSON(res)
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "extra query parameter key=value (repeatable)")
	return cmd
}

func (c *cli) testUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test-users",
		Short: "Manage the app's test users",
	}
	cmd.AddCommand(c.testUsersListCommand())
	cmd.AddCommand(c.testUsersCreateCommand())
	cmd.AddCommand(c.testUsersDeleteCommand())
	return cmd
}

func (c *cli) testUsersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List test users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.appAPI()
			if err != nil {
				return err
			}
			res, err := api.TestUsers(cmd.Context(), nil)
			if err != nil {
				return err
			}
			return c.printJSON(res)
		},
	}
}

func (c *cli) testUsersCreateCommand() *cobra.Command {
	var (
		name        string
		locale      string
		permissions string
		installed   bool
		params      []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a test user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parseParams(params)
			if err != nil {
				return err
			}
			api, err := c.appAPI()
			if err != nil {
				return err
			}
			opts := graph.TestUserOptions{
				Name:   firstNonEmpty(name, c.cfg.TestUserName),
				Locale: firstNonEmpty(locale, c.cfg.TestUserLocale),
			}
			if cmd.Flags().Changed("installed") {
				opts.Installed = &installed
			} else {
				opts.Installed = &c.cfg.TestUserInstalled
			}
			if permissions != "" {
				opts.Permissions = strings.Split(permissions, ",")
			}
			res, err := api.CreateTestUser(cmd.Context(), opts, extra)
			if err != nil {
				return err
			}
			return c.printJSON(res)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "display name (default FB_TEST_USER_NAME)")
	flags.StringVar(&locale, "locale", "", "locale (default FB_TEST_USER_LOCALE)")
	flags.StringVar(&permissions, "permissions", "", "comma separated permissions to grant")
	flags.BoolVar(&installed, "installed", true, "install the app for the user")
	flags.StringArrayVarP(&params, "param", "p", nil, "extra query parameter key=value (repeatable)")
	return cmd
}

func (c *cli) testUsersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a test user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.appAPI()
			if err != nil {
				return err
			}
			res, err := api.DeleteTestUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printJSON(res)
		},
	}
}

func (c *cli) sendTextCommand() *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "send-text <psid> <text>",
		Short: "Send a text message from the page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.sendAPI()
			if err != nil {
				return err
			}
			req := messenger.NewTextRequest(messenger.RecipientID(args[0]), args[1])
			if tag != "" {
				req.MessagingType = messenger.MessagingMessageTag
				req.Tag = messenger.MessageTag(strings.ToUpper(tag))
			}
			resp, err := api.Send(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.printJSON(resp)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "send outside the messaging window with this message tag")
	return cmd
}

func (c *cli) messageTagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "message-tags",
		Short: "List the message tags the page may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.sendAPI()
			if err != nil {
				return err
			}
			res, err := api.PageMessageTags(cmd.Context())
			if err != nil {
				return err
			}
			return c.printJSON(res)
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
