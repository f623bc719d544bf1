package serviceutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Text string `json:"text"`
}

type echoResponse struct {
	Text string `json:"text"`
}

func TestJSONCodecRoundTripOverConnect(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/test.v1.EchoService/Echo", connect.NewUnaryHandler(
		"/test.v1.EchoService/Echo",
		func(ctx context.Context, req *connect.Request[echoRequest]) (*connect.Response[echoResponse], error) {
			return connect.NewResponse(&echoResponse{Text: req.Msg.Text}), nil
		},
		connect.WithCodec(JSONCodec{}),
		connect.WithInterceptors(VerifyAccessTokenInterceptor("secret")),
	))
	server := httptest.NewServer(mux)
	defer server.Close()

	unauthorized := connect.NewClient[echoRequest, echoResponse](
		server.Client(),
		server.URL+"/test.v1.EchoService/Echo",
		connect.WithCodec(JSONCodec{}),
	)
	_, err := unauthorized.CallUnary(context.Background(), connect.NewRequest(&echoRequest{Text: "hi"}))
	require.Error(t, err)
	require.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	client := connect.NewClient[echoRequest, echoResponse](
		server.Client(),
		server.URL+"/test.v1.EchoService/Echo",
		connect.WithCodec(JSONCodec{}),
		connect.WithInterceptors(ProvideAccessTokenInterceptor("secret")),
	)
	res, err := client.CallUnary(context.Background(), connect.NewRequest(&echoRequest{Text: "pangolin"}))
	require.NoError(t, err)
	require.Equal(t, "pangolin", res.Msg.Text)
}

func TestBearerMatches(t *testing.T) {
	require.True(t, BearerMatches("Bearer secret", "secret"))
	require.False(t, BearerMatches("secret", "secret"))
	require.False(t, BearerMatches("Basic secret", "secret"))
	require.False(t, BearerMatches("Bearer secret2", "secret"))
	require.False(t, BearerMatches("Bearer ", "secret"))
	require.False(t, BearerMatches("", "secret"))
}
