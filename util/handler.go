// Package util holds helpers shared by the MCP tool handlers.
package util

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// LegacyHandler is a tool handler that only needs the call arguments.
type LegacyHandler func(arguments map[string]interface{}) (*mcp.CallToolResult, error)

// Arguments returns the arguments of a tool call as a map. Calls without
// object arguments yield an empty map.
func Arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := any(request.Params.Arguments).(map[string]interface{}); ok && args != nil {
		return args
	}
	return map[string]interface{}{}
}

// AdaptLegacyHandler turns an argument-only handler into a server handler.
func AdaptLegacyHandler(h LegacyHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return h(Arguments(request))
	}
}

// ErrorGuard reports panics and errors from h as error results.
func ErrorGuard(h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithFields(logrus.Fields{
					"tool":  request.Params.Name,
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("Tool handler panicked")
				result = mcp.NewToolResultError(fmt.Sprintf("internal error: %v", r))
				err = nil
			}
		}()

		result, err = h(ctx, request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return result, nil
	}
}
