package http

import (
	"github.com/notes-api/internal/infrastructure/dynamo"
	"github.com/notes-api/internal/infrastructure/google"
	jwtinfra "github.com/notes-api/internal/infrastructure/jwt"
	s3infra "github.com/notes-api/internal/infrastructure/s3"
	"github.com/notes-api/internal/infrastructure/smtp"
)

// Deps holds the infrastructure the router wires into the services. Service
// construction itself happens in NewRouter so main only assembles infra.
type Deps struct {
	UserRepo       *dynamo.UserRepo
	NoteRepo       *dynamo.NoteRepo
	AttachmentRepo *dynamo.AttachmentRepo
	S3Store        *s3infra.Store
	Mailer         smtp.Mailer
	JWTProvider    *jwtinfra.Provider
	GoogleVerifier *google.Verifier
}
