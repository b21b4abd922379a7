package cmd

import (
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string

	registration service.Registration
	resetToken   string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Log in, log out, check your session, create an account and recover your password",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to your account",
	Long:  "Log in with email and password. Missing values are prompted for.",
	RunE: func(cmd *cobra.Command, args []string) error {
		authService := service.NewAuthService()
		return authService.Login(cmd.Context(), loginEmail, loginPassword)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		authService := service.NewAuthService()
		return authService.Logout(cmd.Context())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the server accepts your session",
	RunE: func(cmd *cobra.Command, args []string) error {
		authService := service.NewAuthService()
		return authService.Status(cmd.Context())
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long:  "Create an account. Missing fields and the password are prompted for. A verification link is emailed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().Register(cmd.Context(), registration)
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <token>",
	Short: "Verify your account with the emailed token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().Verify(cmd.Context(), args[0])
	},
}

var resendVerificationCmd = &cobra.Command{
	Use:   "resend-verification [email]",
	Short: "Send the verification email again",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := ""
		if len(args) == 1 {
			email = args[0]
		}
		return service.NewAuthService().ResendVerification(cmd.Context(), email)
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password [email]",
	Short: "Email a password reset link",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := ""
		if len(args) == 1 {
			email = args[0]
		}
		return service.NewAuthService().RequestPasswordReset(cmd.Context(), email)
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password with the emailed reset token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().ResetPassword(cmd.Context(), resetToken)
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted without echo when omitted)")

	f := registerCmd.Flags()
	f.StringVar(&registration.FirstName, "first-name", "", "First name")
	f.StringVar(&registration.LastName, "last-name", "", "Last name")
	f.StringVar(&registration.Username, "username", "", "Username")
	f.StringVar(&registration.Email, "email", "", "Email or phone number")
	f.StringVar(&registration.HomeLocation, "home-location", "", "Home neighborhood")
	f.BoolVar(&registration.AcceptTerms, "accept-terms", false, "Accept the terms and conditions")

	resetPasswordCmd.Flags().StringVar(&resetToken, "token", "", "Reset token from the email")
	_ = resetPasswordCmd.MarkFlagRequired("token")

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(verifyCmd)
	authCmd.AddCommand(resendVerificationCmd)
	authCmd.AddCommand(forgotPasswordCmd)
	authCmd.AddCommand(resetPasswordCmd)
}
