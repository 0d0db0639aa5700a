package main

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blog-service/internal/auth"
	"blog-service/internal/post"
	"blog-service/internal/server"
	"blog-service/internal/shared/jwt"
	"blog-service/internal/shared/logx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func startBlog(t *testing.T) (*httptest.Server, *post.MemoryRepository) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	require.NoError(t, err)
	a, err := auth.NewAuthenticator("blog@gmail.net", "", string(hash))
	require.NoError(t, err)

	repo := post.NewMemoryRepository()
	log := logx.Discard()
	srv := httptest.NewServer(server.NewHandler(server.Deps{
		Posts:  post.NewService(repo, nil, log),
		Auth:   a,
		Tokens: jwt.NewManager([]byte("s"), time.Hour, time.Hour),
		Log:    log,
	}))
	t.Cleanup(srv.Close)
	return srv, repo
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedCommand(t *testing.T) {
	srv, repo := startBlog(t)

	out, err := run(t, "seed", "--url", srv.URL, "--username", "blog@gmail.net", "--password", "123456", "--count", "4", "--seed", "42")
	require.NoError(t, err)
	assert.Equal(t, 4, repo.Len())
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 4)

	out, err = run(t, "list", "--url", srv.URL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1 "))
}

func TestSeedCommand_BadLogin(t *testing.T) {
	srv, repo := startBlog(t)

	_, err := run(t, "seed", "--url", srv.URL, "--username", "blog@gmail.net", "--password", "nope", "--count", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Wrong username or password")
	assert.Equal(t, 0, repo.Len())
}

func TestLoginCommand(t *testing.T) {
	srv, _ := startBlog(t)

	out, err := run(t, "login", "--url", srv.URL, "--username", "blog@gmail.net", "--password", "123456")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(strings.TrimSpace(out), "."), "a JWT has three segments")
}

func TestHashPasswordCommand(t *testing.T) {
	out, err := run(t, "hash-password", "s3cret")
	require.NoError(t, err)

	a, err := auth.NewAuthenticator("u", "", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.NoError(t, a.Check("u", "s3cret"))

	_, err = run(t, "hash-password")
	assert.Error(t, err)
}
