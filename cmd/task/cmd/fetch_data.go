package cmd

import (
	"fmt"
	"time"

	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"geodisasters/database"
	"geodisasters/internal/api/geodisasters"
	"geodisasters/internal/api/georapid"
	usecase "geodisasters/internal/usecase/task"
)

func newFetchDataCmd(injector *do.Injector) *cobra.Command {
	c := &cobra.Command{
		Use:   "fetch-data",
		Short: "fetching data from a source",
		Run: func(c *cobra.Command, args []string) {
			c.Help()
		},
	}

	c.AddCommand(newFetchDataGeoDisastersCmd(injector))

	return c
}

func newFetchDataGeoDisastersCmd(injector *do.Injector) *cobra.Command {
	c := &cobra.Command{
		Use:   "geodisasters",
		Short: "fetching the most common disaster locations from GeoDisasters",
		RunE: func(c *cobra.Command, args []string) error {
			return newFetchDataCommand(c, injector).Execute()
		},
	}

	c.Flags().String("dest-url", "", "destination to save the fetched data (file://path/to/file.json or db://)")
	c.Flags().String("format", georapid.DefaultOutFormat.String(), "output format of the service (geojson or esri)")
	c.Flags().String("start-date", "", "start date of the range, not before 2023-05-24 (optional, defaults to 2023-05-24)")
	c.Flags().String("end-date", "", "end date of the range, not after yesterday (optional, defaults to yesterday)")
	c.MarkFlagRequired("dest-url")

	return c
}

type geoDisastersFetchDataCommand struct {
	cmd      *cobra.Command
	injector *do.Injector
}

func newFetchDataCommand(cmd *cobra.Command, injector *do.Injector) *geoDisastersFetchDataCommand {
	return &geoDisastersFetchDataCommand{cmd: cmd, injector: injector}
}

func (c *geoDisastersFetchDataCommand) Execute() error {
	destURL, err := c.cmd.Flags().GetString("dest-url")
	if err != nil {
		return err
	}

	formatStr, err := c.cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	format, err := georapid.ParseOutFormat(formatStr)
	if err != nil {
		return err
	}

	startDate, err := c.getOptionDateFlag("start-date")
	if err != nil {
		return err
	}

	endDate, err := c.getOptionDateFlag("end-date")
	if err != nil {
		return err
	}

	client := do.MustInvoke[*georapid.Client](c.injector)
	api := do.MustInvoke[*geodisasters.API](c.injector)

	req := &usecase.FetchDataRequest{
		Source:    usecase.SourceGeoDisasters,
		Format:    format,
		DestURL:   destURL,
		StartDate: startDate,
		EndDate:   endDate,
	}

	uc := usecase.NewFetchDataTaskUseCase(api, client, func() (database.DB, error) {
		return do.Invoke[database.DB](c.injector)
	})
	resp, err := uc.FetchData(c.cmd.Context(), req)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.cmd.OutOrStdout(), "fetched %d features (stored: %d, skipped: %d)\n", resp.Features, resp.Stored, resp.Skipped)

	return nil
}

func (c *geoDisastersFetchDataCommand) getOptionDateFlag(flag string) (*time.Time, error) {
	if !c.cmd.Flags().Changed(flag) {
		return nil, nil
	}

	dateStr, err := c.cmd.Flags().GetString(flag)
	if err != nil {
		return nil, err
	} else if dateStr == "" {
		return nil, nil
	}

	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format: %v", flag, err)
	}

	return lo.ToPtr(date), nil
}
