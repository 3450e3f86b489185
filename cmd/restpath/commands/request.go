package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/restpath/pkg/rest"
	"github.com/fivetwenty-io/restpath/pkg/restclient"
)

type (
	sendFunc    func(context.Context, *restclient.Client, string, *resource, rest.Query) error
	captureFunc func(context.Context, *restclient.Client, string, *resource, rest.Query) (*rest.Envelope[json.RawMessage], error)
)

// verb describes one request command.
type verb struct {
	method  string
	short   string
	long    string
	send    sendFunc
	capture captureFunc
}

type requestOptions struct {
	query   []string
	headers []string
	data    string
	capture bool
}

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var opts requestOptions

	cmd := &cobra.Command{
		Use:   "get PATH",
		Short: "Fetch a resource",
		Long:  "Send a GET request for PATH, relative to the base URL, and print the response body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], &opts)
		},
	}

	addRequestFlags(cmd, &opts, false)

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	return newVerbCommand(verb{
		method: http.MethodDelete,
		short:  "Delete a resource",
		long:   "Send a DELETE request for PATH, optionally with a JSON body and query parameters",
		send: func(ctx context.Context, c *restclient.Client, path string, body *resource, query rest.Query) error {
			if body == nil && len(query) == 0 {
				return restclient.Delete[resource](ctx, c, path)
			}

			return restclient.DeleteWith(ctx, c, path, body, query)
		},
		capture: restclient.DeleteCaptureWith[json.RawMessage, resource, string],
	})
}

// NewPostCommand creates the post command.
func NewPostCommand() *cobra.Command {
	return newVerbCommand(verb{
		method:  http.MethodPost,
		short:   "Create a resource",
		long:    "Send a POST request to PATH with the JSON body given in --data",
		send:    restclient.PostWith[resource, string],
		capture: restclient.PostCaptureWith[json.RawMessage, resource, string],
	})
}

// NewPutCommand creates the put command.
func NewPutCommand() *cobra.Command {
	return newVerbCommand(verb{
		method:  http.MethodPut,
		short:   "Replace a resource",
		long:    "Send a PUT request to PATH with the JSON body given in --data",
		send:    restclient.PutWith[resource, string],
		capture: restclient.PutCaptureWith[json.RawMessage, resource, string],
	})
}

// NewPatchCommand creates the patch command.
func NewPatchCommand() *cobra.Command {
	return newVerbCommand(verb{
		method:  http.MethodPatch,
		short:   "Update a resource",
		long:    "Send a PATCH request to PATH with the JSON body given in --data",
		send:    restclient.PatchWith[resource, string],
		capture: restclient.PatchCaptureWith[json.RawMessage, resource, string],
	})
}

func newVerbCommand(v verb) *cobra.Command {
	var opts requestOptions

	cmd := &cobra.Command{
		Use:   strings.ToLower(v.method) + " PATH",
		Short: v.short,
		Long:  v.long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, v, args[0], &opts)
		},
	}

	addRequestFlags(cmd, &opts, true)

	return cmd
}

func addRequestFlags(cmd *cobra.Command, opts *requestOptions, withBody bool) {
	cmd.Flags().StringArrayVarP(&opts.query, "query", "q", nil, "query parameter as key=value, repeatable, sent in order")
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "request header as name:value, repeatable")

	if withBody {
		cmd.Flags().StringVarP(&opts.data, "data", "d", "", "JSON request body")
		cmd.Flags().BoolVar(&opts.capture, "capture", false, "print the response status, URL and body")
	}
}

// prepare parses flags and builds the client.
func prepare(cmd *cobra.Command, opts *requestOptions) (*restclient.Client, rest.Query, func(), error) {
	output := viper.GetString("output")

	err := validateOutput(output)
	if err != nil {
		return nil, nil, nil, err
	}

	query, err := parseQuery(opts.query)
	if err != nil {
		return nil, nil, nil, err
	}

	headers, err := parseHeaders(opts.headers)
	if err != nil {
		return nil, nil, nil, err
	}

	client, release, err := newClient(cmd.Context(), headers)
	if err != nil {
		return nil, nil, nil, err
	}

	return client, query, release, nil
}

func runGet(cmd *cobra.Command, path string, opts *requestOptions) error {
	client, query, release, err := prepare(cmd, opts)
	if err != nil {
		return err
	}
	defer release()

	doc, err := restclient.GetWith[resource](cmd.Context(), client, path, query)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), viper.GetString("output"), result{Body: doc.raw})
}

func runVerb(cmd *cobra.Command, v verb, path string, opts *requestOptions) error {
	body, err := parseData(opts.data)
	if err != nil {
		return err
	}

	client, query, release, err := prepare(cmd, opts)
	if err != nil {
		return err
	}
	defer release()

	if !opts.capture {
		err = v.send(cmd.Context(), client, path, body, query)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: OK\n", v.method, path)

		return nil
	}

	envelope, err := v.capture(cmd.Context(), client, path, body, query)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), viper.GetString("output"), result{
		Status: envelope.StatusCode,
		URL:    envelope.URL,
		Body:   envelope.Data,
	})
}
