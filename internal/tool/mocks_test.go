package tool_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
)

type gmailSvcMock struct {
	ListMessagesFunc       func(ctx context.Context, q, pageToken string, maxResults int64) (*gmail.ListMessagesResponse, error)
	GetMessageMetadataFunc func(ctx context.Context, msgID string) (*gmail.Message, error)
	GetMessageFunc         func(ctx context.Context, msgID string) (*gmail.Message, error)
	GetAttachmentFunc      func(ctx context.Context, msgID, attachmentID string) (*gmail.MessagePartBody, error)
}

func (m *gmailSvcMock) ListMessages(ctx context.Context, q, pageToken string, maxResults int64) (*gmail.ListMessagesResponse, error) {
	if m.ListMessagesFunc == nil {
		panic("gmailSvcMock.ListMessagesFunc: method is nil but ListMessages was just called")
	}
	return m.ListMessagesFunc(ctx, q, pageToken, maxResults)
}

func (m *gmailSvcMock) GetMessageMetadata(ctx context.Context, msgID string) (*gmail.Message, error) {
	if m.GetMessageMetadataFunc == nil {
		panic("gmailSvcMock.GetMessageMetadataFunc: method is nil but GetMessageMetadata was just called")
	}
	return m.GetMessageMetadataFunc(ctx, msgID)
}

func (m *gmailSvcMock) GetMessage(ctx context.Context, msgID string) (*gmail.Message, error) {
	if m.GetMessageFunc == nil {
		panic("gmailSvcMock.GetMessageFunc: method is nil but GetMessage was just called")
	}
	return m.GetMessageFunc(ctx, msgID)
}

func (m *gmailSvcMock) GetAttachment(ctx context.Context, msgID, attachmentID string) (*gmail.MessagePartBody, error) {
	if m.GetAttachmentFunc == nil {
		panic("gmailSvcMock.GetAttachmentFunc: method is nil but GetAttachment was just called")
	}
	return m.GetAttachmentFunc(ctx, msgID, attachmentID)
}

type converterMock struct {
	HTML2TextFunc func(raw []byte) (string, error)
	TextFunc      func(mimeType, fileName string, raw []byte) (string, error)
}

func (m *converterMock) HTML2Text(raw []byte) (string, error) {
	if m.HTML2TextFunc == nil {
		panic("converterMock.HTML2TextFunc: method is nil but HTML2Text was just called")
	}
	return m.HTML2TextFunc(raw)
}

func (m *converterMock) Text(mimeType, fileName string, raw []byte) (string, error) {
	if m.TextFunc == nil {
		panic("converterMock.TextFunc: method is nil but Text was just called")
	}
	return m.TextFunc(mimeType, fileName, raw)
}

func connect(t *testing.T, server *mcp.Server) *mcp.ClientSession {
	t.Helper()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ctx := context.Background()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientSession.Close() })

	return clientSession
}

// callTool invokes a tool and decodes its JSON result into out. It returns
// the error text when the tool reported an error.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args any, out any) string {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text := result.Content[0].(*mcp.TextContent).Text
	if result.IsError {
		return text
	}

	require.NoError(t, json.Unmarshal([]byte(text), out))
	return ""
}
