package twitter

import "fmt"

const (
	graphqlBase = "https://x.com/i/api/graphql"
	restBase    = "https://api.twitter.com"
)

// webBearer is the public bearer token shipped in the x.com web bundle.
const webBearer = "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"

// operationIDs holds the GraphQL document IDs for the read operations the
// collector uses. They rotate with web-app deployments.
var operationIDs = map[string]string{
	"UserByScreenName": "1VOOyvKkiI3FMmkeDNxM9A",
	"UserByRestId":     "WJ7rCtezBVT6nk6VM5R8Bw",
	"UserTweets":       "HeWHY26ItCfUmm1e6ITjeA",
	"Likes":            "lIDpu_NWL7_VhimGGt0o6A",
	"SearchTimeline":   "AIdc203rPpK_k_2KWSdm7g",
	"Followers":        "Elc_-qTARceHpztqhI9PQA",
	"Following":        "C1qZ6bs-L3oc_TKSZyxkXQ",
}

func operationURL(operation string) (string, error) {
	id, ok := operationIDs[operation]
	if !ok {
		return "", fmt.Errorf("unknown graphql operation %q", operation)
	}
	return graphqlBase + "/" + id + "/" + operation, nil
}

// timelineFeatures is sent with every operation.
var timelineFeatures = map[string]any{
	"articles_preview_enabled":                                                false,
	"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
	"communities_web_enable_tweet_community_results_fetch":                    true,
	"creator_subscriptions_quote_tweet_preview_enabled":                       false,
	"creator_subscriptions_tweet_preview_api_enabled":                         true,
	"freedom_of_speech_not_reach_fetch_enabled":                               true,
	"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
	"longform_notetweets_consumption_enabled":                                 true,
	"longform_notetweets_inline_media_enabled":                                true,
	"longform_notetweets_rich_text_read_enabled":                              true,
	"premium_content_api_read_enabled":                                        false,
	"profile_label_improvements_pcf_label_in_post_enabled":                    false,
	"responsive_web_edit_tweet_api_enabled":                                   true,
	"responsive_web_enhance_cards_enabled":                                    false,
	"responsive_web_graphql_exclude_directive_enabled":                        true,
	"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
	"responsive_web_graphql_timeline_navigation_enabled":                      true,
	"responsive_web_grok_analyze_button_fetch_trends_enabled":                 false,
	"responsive_web_grok_analyze_post_followups_enabled":                      false,
	"responsive_web_grok_image_annotation_enabled":                            false,
	"responsive_web_grok_share_attachment_enabled":                            false,
	"responsive_web_media_download_video_enabled":                             false,
	"responsive_web_twitter_article_tweet_consumption_enabled":                true,
	"rweb_tipjar_consumption_enabled":                                         true,
	"rweb_video_timestamps_enabled":                                           true,
	"standardized_nudges_misinfo":                                             true,
	"tweet_awards_web_tipping_enabled":                                        false,
	"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
	"tweet_with_visibility_results_prefer_gql_media_interstitial_enabled":     false,
	"tweetypie_unmention_optimization_enabled":                                true,
	"verified_phone_label_enabled":                                            false,
	"view_counts_everywhere_api_enabled":                                      true,
}
