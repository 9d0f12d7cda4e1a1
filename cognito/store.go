// Package cognito implements the identity store against AWS Cognito
// user pools. Passwords and sessions live in the pool; the rest of the
// system only ever sees tokens and the pool's subject identifier.
package cognito

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	goerrors "github.com/goliatone/go-errors"

	auth "github.com/brightpath/auth-service"
	"github.com/brightpath/auth-service/config"
)

// Store talks to a single Cognito user pool.
type Store struct {
	client     *cognitoidentityprovider.Client
	userPoolID string
	clientID   string
	logger     auth.Logger
}

// New builds a Store from service configuration. A non-empty
// AWSEndpoint redirects calls to a local emulator, and static
// credentials are only injected when configured, so production
// deployments keep the default provider chain.
func New(ctx context.Context, cfg config.Config, logger auth.Logger) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load AWS configuration")
	}

	client := cognitoidentityprovider.NewFromConfig(awsCfg, func(o *cognitoidentityprovider.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		}
	})

	return &Store{
		client:     client,
		userPoolID: cfg.CognitoUserPoolID,
		clientID:   cfg.CognitoClientID,
		logger:     logger,
	}, nil
}

// CreateAccount provisions a pool user with the welcome email
// suppressed, then promotes the supplied password to permanent so the
// account skips the FORCE_CHANGE_PASSWORD state.
func (s *Store) CreateAccount(ctx context.Context, req auth.RegisterRequest) (string, error) {
	attrs := []types.AttributeType{
		{Name: aws.String("email"), Value: aws.String(req.Email)},
		{Name: aws.String("email_verified"), Value: aws.String("true")},
		{Name: aws.String("given_name"), Value: aws.String(req.FirstName)},
		{Name: aws.String("family_name"), Value: aws.String(req.LastName)},
		{Name: aws.String("custom:role"), Value: aws.String(string(req.Role))},
	}
	if req.SchoolID != "" {
		attrs = append(attrs, types.AttributeType{
			Name:  aws.String("custom:school_id"),
			Value: aws.String(req.SchoolID),
		})
	}

	created, err := s.client.AdminCreateUser(ctx, &cognitoidentityprovider.AdminCreateUserInput{
		UserPoolId:        aws.String(s.userPoolID),
		Username:          aws.String(req.Email),
		TemporaryPassword: aws.String(req.Password),
		MessageAction:     types.MessageActionTypeSuppress,
		UserAttributes:    attrs,
	})
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create identity account")
	}

	_, err = s.client.AdminSetUserPassword(ctx, &cognitoidentityprovider.AdminSetUserPasswordInput{
		UserPoolId: aws.String(s.userPoolID),
		Username:   aws.String(req.Email),
		Password:   aws.String(req.Password),
		Permanent:  true,
	})
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryOperation, "failed to finalize identity account password")
	}

	return subjectOf(created.User), nil
}

// subjectOf extracts the pool's "sub" attribute, falling back to the
// username when the pool does not return it.
func subjectOf(user *types.UserType) string {
	if user == nil {
		return ""
	}
	for _, attr := range user.Attributes {
		if aws.ToString(attr.Name) == "sub" {
			return aws.ToString(attr.Value)
		}
	}
	return aws.ToString(user.Username)
}

func (s *Store) Authenticate(ctx context.Context, email, password string) (*auth.IdentityTokens, error) {
	out, err := s.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		ClientId: aws.String(s.clientID),
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "authentication failed").
			WithCode(goerrors.CodeUnauthorized)
	}
	if out.AuthenticationResult == nil {
		// Challenge flows (MFA, forced reset) are not part of this
		// deployment's pool configuration.
		return nil, goerrors.New("authentication requires an unsupported challenge", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}
	return &auth.IdentityTokens{
		AccessToken:  aws.ToString(out.AuthenticationResult.AccessToken),
		RefreshToken: aws.ToString(out.AuthenticationResult.RefreshToken),
		IDToken:      aws.ToString(out.AuthenticationResult.IdToken),
	}, nil
}

func (s *Store) UpdateAttributes(ctx context.Context, email string, attrs map[string]string) error {
	if len(attrs) == 0 {
		return nil
	}
	list := make([]types.AttributeType, 0, len(attrs))
	for name, value := range attrs {
		list = append(list, types.AttributeType{
			Name:  aws.String(name),
			Value: aws.String(value),
		})
	}
	_, err := s.client.AdminUpdateUserAttributes(ctx, &cognitoidentityprovider.AdminUpdateUserAttributesInput{
		UserPoolId:     aws.String(s.userPoolID),
		Username:       aws.String(email),
		UserAttributes: list,
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to update identity attributes")
	}
	return nil
}

// ChangePassword re-authenticates with the current password first; a
// wrong current password fails before anything is mutated.
func (s *Store) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	tokens, err := s.Authenticate(ctx, email, currentPassword)
	if err != nil {
		return err
	}
	_, err = s.client.ChangePassword(ctx, &cognitoidentityprovider.ChangePasswordInput{
		AccessToken:      aws.String(tokens.AccessToken),
		PreviousPassword: aws.String(currentPassword),
		ProposedPassword: aws.String(newPassword),
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to change password")
	}
	return nil
}

func (s *Store) InitiateReset(ctx context.Context, email string) error {
	_, err := s.client.ForgotPassword(ctx, &cognitoidentityprovider.ForgotPasswordInput{
		ClientId: aws.String(s.clientID),
		Username: aws.String(email),
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to initiate password reset")
	}
	return nil
}

func (s *Store) ConfirmReset(ctx context.Context, email, code, newPassword string) error {
	_, err := s.client.ConfirmForgotPassword(ctx, &cognitoidentityprovider.ConfirmForgotPasswordInput{
		ClientId:         aws.String(s.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to confirm password reset")
	}
	return nil
}

func (s *Store) GlobalSignOut(ctx context.Context, accessToken string) error {
	_, err := s.client.GlobalSignOut(ctx, &cognitoidentityprovider.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to sign out")
	}
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, email string) error {
	_, err := s.client.AdminDeleteUser(ctx, &cognitoidentityprovider.AdminDeleteUserInput{
		UserPoolId: aws.String(s.userPoolID),
		Username:   aws.String(email),
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to delete identity account")
	}
	return nil
}

func (s *Store) AdminSetPassword(ctx context.Context, email, newPassword string) error {
	_, err := s.client.AdminSetUserPassword(ctx, &cognitoidentityprovider.AdminSetUserPasswordInput{
		UserPoolId: aws.String(s.userPoolID),
		Username:   aws.String(email),
		Password:   aws.String(newPassword),
		Permanent:  true,
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to set password")
	}
	return nil
}

var _ auth.IdentityStore = (*Store)(nil)
