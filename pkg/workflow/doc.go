// Package workflow is the entry point for Alfred Script Filters written in
// Go.
//
// A Workflow ties together Alfred's environment, the workflow's wfkit.yaml
// configuration, its log file, settings, cache and data directories, and
// the feedback sent back to Alfred. A typical main looks like:
//
//	func main() {
//		wf, err := workflow.New()
//		if err != nil {
//			log.Fatal(err)
//		}
//		os.Exit(wf.Run(func(wf *workflow.Workflow) error {
//			apps, err := workflow.Cached(wf, "apps", time.Hour, listApps)
//			if err != nil {
//				return err
//			}
//			for _, app := range workflow.Filter(wf, wf.Query(), apps, appName) {
//				wf.AddItem(app.Name).SetArg(app.Path).SetValid(true)
//			}
//			wf.WarnEmpty("No matching apps", "Try a different query")
//			return wf.SendFeedback()
//		}))
//	}
//
// Arguments starting with "workflow:" are handled by Run before the
// function is called. See Workflow.RegisterMagic.
package workflow
