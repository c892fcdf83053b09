package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/pquerna/otp/totp"
)

const (
	// arkosePublicKey identifies the FunCaptcha shown during login.
	arkosePublicKey = "0152B4EB-D2DC-460A-89A1-629838B529C9"

	maxLoginRounds = 10
	loginTimeout   = 3 * time.Minute
	jsSubtask      = "LoginJsInstrumentationSubtask"
)

// loadOrLogin tries a saved session, then cookies from the account entry,
// then a password login.
func (c *Client) loadOrLogin(ctx context.Context, acc *Account) error {
	if authToken, ct0, err := c.sessions.load(acc.Username); err != nil {
		slog.Warn("saved session unusable", slog.String("user", acc.Username), slog.Any("error", err))
	} else if authToken != "" && ct0 != "" {
		acc.SetCredentials(authToken, ct0)
		slog.Debug("session restored", slog.String("user", acc.Username))
		return nil
	}

	if authToken, ct0, _ := acc.Credentials(); authToken != "" && ct0 != "" {
		slog.Debug("using provided cookies", slog.String("user", acc.Username))
		c.persist(acc)
		return nil
	}

	if acc.Password == "" {
		return fmt.Errorf("account %s has no session and no password", acc.Username)
	}
	if err := c.login(ctx, acc); err != nil {
		return fmt.Errorf("login %s: %w", acc.Username, err)
	}
	c.persist(acc)
	return nil
}

// relogin drops the account's cookies and signs in from scratch.
func (c *Client) relogin(ctx context.Context, acc *Account) error {
	slog.Info("attempting relogin", slog.String("user", acc.Username))
	acc.SetCredentials("", "")
	c.sessions.remove(acc.Username)
	if err := c.loadOrLogin(ctx, acc); err != nil {
		return fmt.Errorf("relogin: %w", err)
	}
	acc.Reset()
	slog.Info("relogin succeeded", slog.String("user", acc.Username))
	return nil
}

// login answers onboarding subtasks until the flow ends, then reads the
// session cookies the client collected.
func (c *Client) login(ctx context.Context, acc *Account) error {
	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	slog.Info("logging in", slog.String("user", acc.Username))
	bc := c.httpFor(acc)
	flow, fr, err := startOnboarding(ctx, bc, "login")
	if err != nil {
		return err
	}
	for round := 0; round < maxLoginRounds && len(fr.Subtasks) > 0; round++ {
		id := fr.Subtasks[0].SubtaskID
		slog.Debug("login subtask", slog.String("user", acc.Username), slog.String("subtask", id))

		input, done, err := c.subtaskInput(ctx, acc, id)
		if err != nil {
			return fmt.Errorf("subtask %s: %w", id, err)
		}
		if done {
			break
		}
		if fr, err = flow.post("", subtaskPayload(fr.FlowToken, id, input)); err != nil {
			return fmt.Errorf("subtask %s: %w", id, err)
		}
	}

	authToken, ct0 := sessionCookies(bc)
	if authToken == "" {
		return errors.New("flow ended without an auth_token cookie")
	}
	if ct0 == "" {
		ct0 = newCT0()
	}
	acc.SetCredentials(authToken, ct0)
	slog.Info("login successful", slog.String("user", acc.Username))
	return nil
}

// subtaskInput builds the answer to one login subtask. done is set once the
// flow has logged the account in.
func (c *Client) subtaskInput(ctx context.Context, acc *Account, id string) (input map[string]any, done bool, err error) {
	next := func(m map[string]any) map[string]any {
		m["link"] = "next_link"
		return m
	}
	switch id {
	case "LoginSuccessSubtask", "AccountDuplicationCheck":
		return nil, true, nil
	case "DenyLoginSubtask":
		return nil, false, errors.New("login denied, account may be locked or disabled")
	case jsSubtask:
		return jsInstrumentationInput, false, nil
	case "LoginEnterUserIdentifierSSO":
		return map[string]any{"settings_list": next(map[string]any{
			"setting_responses": []any{map[string]any{
				"key":           "user_identifier",
				"response_data": map[string]any{"text_data": map[string]any{"result": acc.Username}},
			}},
		})}, false, nil
	case "LoginEnterPassword":
		return map[string]any{"enter_password": next(map[string]any{"password": acc.Password})}, false, nil
	case "LoginEnterAlternateIdentifierSubtask":
		return map[string]any{"enter_text": next(map[string]any{"text": acc.Username})}, false, nil
	case "LoginArkoseChallenge", "LoginArkoseCaptcha", "LoginEnterRecaptcha":
		if c.cfg.CaptchaSolver == nil {
			return nil, false, errors.New("captcha required but no solver configured")
		}
		token, err := c.cfg.CaptchaSolver.Solve(ctx, arkosePublicKey, "https://twitter.com")
		if err != nil {
			return nil, false, fmt.Errorf("captcha: %w", err)
		}
		slog.Info("captcha solved", slog.String("user", acc.Username))
		return map[string]any{"web_modal": map[string]any{
			"completion_deeplink": "twitter://onboarding/web_modal/next_link?access_token=" + token,
		}}, false, nil
	case "LoginTwoFactorAuthChallenge":
		if acc.TOTPSecret == "" {
			return nil, false, errors.New("2FA required but no TOTP secret")
		}
		code, err := totp.GenerateCode(acc.TOTPSecret, time.Now())
		if err != nil {
			return nil, false, fmt.Errorf("totp: %w", err)
		}
		return map[string]any{"enter_text": next(map[string]any{"text": code})}, false, nil
	}
	slog.Warn("unknown login subtask, skipping", slog.String("user", acc.Username), slog.String("subtask", id))
	return map[string]any{"action_list": next(map[string]any{})}, false, nil
}

// loginOpenAccount runs the welcome flow on a fresh client and returns the
// anonymous session it yields.
func (c *Client) loginOpenAccount(ctx context.Context) (*Account, error) {
	bc, err := newBrowserClient(c.cfg.Transport)
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	flow, fr, err := startOnboarding(ctx, bc, "welcome")
	if err != nil {
		return nil, err
	}
	if slices.ContainsFunc(fr.Subtasks, func(st flowSubtask) bool { return st.SubtaskID == jsSubtask }) {
		if _, err := flow.post("", subtaskPayload(fr.FlowToken, jsSubtask, jsInstrumentationInput)); err != nil {
			return nil, fmt.Errorf("js instrumentation: %w", err)
		}
	}

	authToken, ct0 := sessionCookies(bc)
	if authToken == "" {
		return nil, errors.New("welcome flow ended without an auth_token cookie")
	}
	acc := NewAccount("guest_"+flow.guestToken[:min(8, len(flow.guestToken))], "")
	acc.SetCredentials(authToken, ct0)
	acc.client = bc
	slog.Info("open account created", slog.String("username", acc.Username))
	return acc, nil
}

// sessionCookies reads auth_token and ct0 from either API origin.
func sessionCookies(bc *stealth.BrowserClient) (authToken, ct0 string) {
	for _, origin := range []string{"https://api.twitter.com", "https://twitter.com"} {
		if authToken == "" {
			authToken = bc.GetCookieValue(origin, "auth_token")
		}
		if ct0 == "" {
			ct0 = bc.GetCookieValue(origin, "ct0")
		}
	}
	return authToken, ct0
}

// onboarding posts task.json steps for one client under one guest token.
type onboarding struct {
	bc         *stealth.BrowserClient
	guestToken string
}

// startOnboarding opens the named task.json flow.
func startOnboarding(ctx context.Context, bc *stealth.BrowserClient, flowName string) (*onboarding, *flowResponse, error) {
	gt, err := acquireGuestToken(ctx, bc)
	if err != nil {
		return nil, nil, err
	}
	o := &onboarding{bc: bc, guestToken: gt}
	fr, err := o.post("?flow_name="+flowName, flowInitPayload)
	if err != nil {
		return nil, nil, fmt.Errorf("start %s flow: %w", flowName, err)
	}
	return o, fr, nil
}

func (o *onboarding) post(query, payload string) (*flowResponse, error) {
	body, _, status, err := o.bc.DoWithHeaderOrder("POST", restBase+"/1.1/onboarding/task.json"+query,
		guestTokenHeaders(o.guestToken), strings.NewReader(payload), headerOrder)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, httpError("task.json", status, body)
	}
	return parseFlowResponse(body)
}

// flowInitPayload is the task.json body that starts the welcome and login flows.
const flowInitPayload = `{"input_flow_data":{"flow_context":{"debug_overrides":{},"start_location":{"location":"splash_screen"}}},"subtask_versions":{"action_list":2,"alert_dialog":1,"app_download_cta":1,"check_logged_in_account":1,"choice_selection":3,"contacts_live_sync_permission_prompt":0,"cta":7,"email_verification":2,"end_flow":1,"enter_date":1,"enter_email":2,"enter_password":5,"enter_phone":2,"enter_recaptcha":1,"enter_text":5,"enter_username":2,"generic_urt":3,"in_app_notification":1,"interest_picker":3,"js_instrumentation":1,"menu_dialog":1,"notifications_permission_prompt":2,"open_account":2,"open_home_timeline":1,"open_link":1,"phone_verification":4,"privacy_options":1,"security_key":3,"select_avatar":4,"select_banner":2,"settings_list":7,"show_code":1,"sign_up":2,"sign_up_review":4,"tweet_selection_urt":1,"update_users":1,"upload_media":1,"user_recommendations_list":4,"user_recommendations_urt":1,"wait_spinner":3,"web_modal":1}}`

type flowResponse struct {
	FlowToken string        `json:"flow_token"`
	Subtasks  []flowSubtask `json:"subtasks"`
}

type flowSubtask struct {
	SubtaskID string `json:"subtask_id"`
}

func parseFlowResponse(body []byte) (*flowResponse, error) {
	var fr flowResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return nil, fmt.Errorf("parse flow response: %w", err)
	}
	if fr.FlowToken == "" {
		return nil, fmt.Errorf("empty flow_token in response: %s", truncateBytes(body, 200))
	}
	return &fr, nil
}

// subtaskPayload builds a task.json body answering one subtask.
func subtaskPayload(flowToken, subtaskID string, input map[string]any) string {
	in := map[string]any{"subtask_id": subtaskID}
	maps.Copy(in, input)
	b, _ := json.Marshal(map[string]any{
		"flow_token":     flowToken,
		"subtask_inputs": []any{in},
	})
	return string(b)
}

var jsInstrumentationInput = map[string]any{
	"js_instrumentation": map[string]any{"response": `{"rf":{"a":"b"},"s":"s"}`, "link": "next_link"},
}
