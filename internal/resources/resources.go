package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/bookify/internal/instrumentation"
	"github.com/teemow/bookify/internal/server"
)

const (
	accountURI     = "bookify://account"
	configURI      = "bookify://config"
	domainsPrefix  = "bookify://domains/"
	roomsTemplate  = domainsPrefix + "{domain}/rooms"
	floorsTemplate = domainsPrefix + "{domain}/floors"
)

// RegisterResources registers the account, config and directory resources
func RegisterResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	accountResource := mcp.NewResource(
		accountURI,
		"Current Account",
		mcp.WithResourceDescription("The account booking tools act for and whether a Google grant is stored for it"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(accountResource, traced(sc, handleAccount))

	configResource := mcp.NewResource(
		configURI,
		"Booking Defaults",
		mcp.WithResourceDescription("Defaults applied to new bookings"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(configResource, traced(sc, handleConfig))

	roomsResource := mcp.NewResourceTemplate(
		roomsTemplate,
		"Domain Rooms",
		mcp.WithTemplateDescription("All bookable meeting rooms of a Google Workspace domain"),
		mcp.WithTemplateMIMEType("application/json"),
	)

	s.AddResourceTemplate(roomsResource, traced(sc, handleRooms))

	floorsResource := mcp.NewResourceTemplate(
		floorsTemplate,
		"Domain Floors",
		mcp.WithTemplateDescription("Distinct floor labels of a Google Workspace domain's meeting rooms"),
		mcp.WithTemplateMIMEType("application/json"),
	)

	s.AddResourceTemplate(floorsResource, traced(sc, handleFloors))

	return nil
}

type resourceHandler func(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error)

// traced wraps a resource read in a span.
func traced(sc *server.ServerContext, handler resourceHandler) func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ctx, span := instrumentation.StartSpan(ctx, "resource.read",
			instrumentation.NewSpanAttributeBuilder().
				WithResource("resource", request.Params.URI).
				WithReadOnly(true).
				Build()...)
		defer span.End()

		contents, err := handler(ctx, request, sc)
		if err != nil {
			instrumentation.SetSpanError(span, err)
			return nil, err
		}
		instrumentation.SetSpanSuccess(span)
		return contents, nil
	}
}

// accountFromContext returns the account set by the HTTP transport, or the
// server's default account for stdio.
func accountFromContext(ctx context.Context, sc *server.ServerContext) string {
	if account, ok := server.AccountFromContext(ctx); ok {
		return account
	}
	return sc.DefaultAccount()
}

// domainFromURI extracts {domain} from a bookify://domains/{domain}/<leaf> URI.
func domainFromURI(uri, leaf string) (string, error) {
	rest, ok := strings.CutPrefix(uri, domainsPrefix)
	if !ok {
		return "", fmt.Errorf("unexpected resource URI %q", uri)
	}
	domain, ok := strings.CutSuffix(rest, "/"+leaf)
	if !ok || domain == "" || strings.Contains(domain, "/") {
		return "", fmt.Errorf("resource URI %q does not name a domain", uri)
	}
	return domain, nil
}

func handleAccount(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := accountFromContext(ctx, sc)

	return jsonContents(request.Params.URI, map[string]interface{}{
		"account":    account,
		"authorized": sc.TokenStore().Has(ctx, account),
		"domain":     sc.Domain(),
	})
}

func handleConfig(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	service, err := sc.Service()
	if err != nil {
		return nil, err
	}
	config := service.Config()

	return jsonContents(request.Params.URI, map[string]interface{}{
		"domain":             sc.Domain(),
		"defaultTitle":       config.DefaultTitle,
		"description":        config.Description,
		"colorId":            config.ColorID,
		"eventPageSize":      config.EventPageSize,
		"conferenceSolution": config.ConferenceSolution,
	})
}

func handleRooms(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	domain, err := domainFromURI(request.Params.URI, "rooms")
	if err != nil {
		return nil, err
	}
	service, err := sc.Service()
	if err != nil {
		return nil, err
	}

	rooms, err := service.ListRooms(ctx, domain)
	if err != nil {
		return nil, err
	}

	return jsonContents(request.Params.URI, map[string]interface{}{
		"domain": domain,
		"count":  len(rooms),
		"rooms":  rooms,
	})
}

func handleFloors(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	domain, err := domainFromURI(request.Params.URI, "floors")
	if err != nil {
		return nil, err
	}
	service, err := sc.Service()
	if err != nil {
		return nil, err
	}

	floors, err := service.ListFloors(ctx, domain)
	if err != nil {
		return nil, err
	}

	return jsonContents(request.Params.URI, map[string]interface{}{
		"domain": domain,
		"floors": floors,
	})
}

func jsonContents(uri string, data interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
