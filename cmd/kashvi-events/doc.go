// Command kashvi-events runs the demo application: a mailer registered
// lazily through the service container and a user subscriber guarding
// sign-ups from blocked domains.
//
//	kashvi-events debug:event-dispatcher
//	kashvi-events debug:event-dispatcher user.created
//	kashvi-events dispatch user.created --subject alice@example.com
//	BLOCKED_DOMAINS=spam.test kashvi-events dispatch user.created -s bot@spam.test
//	kashvi-events metrics
package main
